// Command tsd is the tuple space server: it listens on a UDP socket and
// answers OUT/IN/INP/RD/RDP/HELLO requests against a single in-memory
// store.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/op/go-logging"
	"github.com/urfave/cli"

	"github.com/julianuziemblo/tuple-space/dispatch"
	"github.com/julianuziemblo/tuple-space/internal/tsnet"
	"github.com/julianuziemblo/tuple-space/store"
	"github.com/julianuziemblo/tuple-space/tslog"
)

func useSyslog() bool {
	env := os.Getenv("TS_LOG_SYSLOG")
	if env != "" {
		return env == "true"
	}
	return true
}

var log *logging.Logger

func main() {
	app := cli.NewApp()
	app.Name = "tsd"
	app.Usage = "serve a tuple space over UDP"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "addr",
			Usage: "UDP address to listen on (env TS_ADDR, default " + tsnet.DefaultServerAddr + ")",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "CRITICAL, ERROR, WARNING, NOTICE, INFO, or DEBUG (env TS_LOG_LEVEL, default INFO)",
		},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log = tslog.Setup("tsd", logging.INFO, useSyslog())
	// Setup applies TS_LOG_LEVEL; an explicit --log-level overrides it.
	if flagLevel := c.String("log-level"); flagLevel != "" {
		logging.SetLevel(tslog.ResolveLevel(flagLevel, logging.INFO), "tsd")
	}

	defer func() {
		if x := recover(); x != nil {
			log.Error(fmt.Sprintf("run time panic: %v", x))
			log.Error(string(debug.Stack()))
			panic(x)
		}
	}()

	addr := tsnet.ResolveAddr(c.String("addr"), tsnet.DefaultServerAddr)
	conn, err := tsnet.ListenUDP(addr)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	st := store.New()
	d, err := dispatch.New(st, log)
	if err != nil {
		log.Fatal(err)
	}

	log.Notice("tsd listening on", addr)

	stopSignal := make(chan os.Signal, 1)
	signal.Notify(stopSignal, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	go serve(conn, d)

	sig := <-stopSignal
	log.Notice("stopping with signal", sig)
	return nil
}

// serve reads datagrams off conn and hands each to its own goroutine:
// concurrent requests against a single shared, lock-protected store.
func serve(conn *net.UDPConn, d *dispatch.Dispatcher) {
	for {
		buf := make([]byte, tsnet.MaxPacketSize)
		n, raddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			log.Error("read:", err)
			return
		}
		req := buf[:n]
		go func(req []byte, raddr *net.UDPAddr) {
			resp := d.HandleBytes(req)
			if _, err := conn.WriteToUDP(resp, raddr); err != nil {
				log.Warning("write to", raddr, ":", err)
			}
		}(req, raddr)
	}
}
