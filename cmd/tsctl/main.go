// Command tsctl is a command line client for a tuple space server,
// sending one OUT/IN/INP/RD/RDP request per invocation and printing the
// response.
package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/julianuziemblo/tuple-space/internal/color"
	"github.com/julianuziemblo/tuple-space/internal/tsnet"
	"github.com/julianuziemblo/tuple-space/packet"
	"github.com/julianuziemblo/tuple-space/tuple"
)

func main() {
	app := cli.NewApp()
	app.Name = "tsctl"
	app.Usage = "send a single request to a tuple space server"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "server",
			Usage: "UDP address of the tuple space server (env TS_ADDR, default " + tsnet.DefaultServerAddr + ")",
		},
		cli.DurationFlag{
			Name:  "timeout",
			Value: 5 * time.Second,
			Usage: "how long to wait for a reply",
		},
	}
	app.Commands = []cli.Command{
		tupleCommand("out", packet.OUT, "write a tuple into the space"),
		tupleCommand("in", packet.IN, "blocking take: remove and print a matching tuple"),
		tupleCommand("inp", packet.INP, "non-blocking take"),
		tupleCommand("rd", packet.RD, "blocking read: print a matching tuple without removing it"),
		tupleCommand("rdp", packet.RDP, "non-blocking read"),
		cli.Command{
			Name:   "hello",
			Usage:  "handshake with the server and print its greeting",
			Action: helloAction,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.Red(err.Error()))
		os.Exit(1)
	}
}

func tupleCommand(name string, opcode packet.Opcode, usage string) cli.Command {
	return cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "\"('name', field, field, ...)\"",
		Action: func(c *cli.Context) error {
			return tupleAction(c, opcode)
		},
	}
}

func tupleAction(c *cli.Context, opcode packet.Opcode) error {
	text := c.Args().First()
	if text == "" {
		return fmt.Errorf("tsctl: %s requires a tuple argument", c.Command.Name)
	}
	t, err := tuple.Parse(text)
	if err != nil {
		return fmt.Errorf("tsctl: parsing tuple: %w", err)
	}

	req, err := packet.NewBuilder().Opcode(opcode).Flags(0).Tuple(t).Build()
	if err != nil {
		return fmt.Errorf("tsctl: building request: %w", err)
	}

	resp, err := roundTrip(c, req)
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func helloAction(c *cli.Context) error {
	req, err := packet.NewBuilder().Opcode(packet.EMPTY).Flags(packet.HELLO).Build()
	if err != nil {
		return fmt.Errorf("tsctl: building hello: %w", err)
	}
	resp, err := roundTrip(c, req)
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func roundTrip(c *cli.Context, req packet.Packet) (packet.Packet, error) {
	serverAddr := tsnet.ResolveAddr(c.GlobalString("server"), tsnet.DefaultServerAddr)
	addr, err := net.ResolveUDPAddr("udp", serverAddr)
	if err != nil {
		return packet.Packet{}, fmt.Errorf("tsctl: resolving %s: %w", serverAddr, err)
	}
	// Bind the client's default endpoint; fall back to an ephemeral
	// port when it is already taken (a second tsctl running).
	laddr, _ := net.ResolveUDPAddr("udp", tsnet.DefaultClientAddr)
	conn, err := net.DialUDP("udp", laddr, addr)
	if err != nil {
		conn, err = net.DialUDP("udp", nil, addr)
	}
	if err != nil {
		return packet.Packet{}, fmt.Errorf("tsctl: dialing %s: %w", serverAddr, err)
	}
	defer conn.Close()

	timeout := c.GlobalDuration("timeout")
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return packet.Packet{}, err
	}

	if _, err := conn.Write(packet.Serialize(req)); err != nil {
		return packet.Packet{}, fmt.Errorf("tsctl: sending request: %w", err)
	}

	buf := make([]byte, tsnet.MaxPacketSize)
	n, err := conn.Read(buf)
	if err != nil {
		return packet.Packet{}, fmt.Errorf("tsctl: reading reply: %w", err)
	}

	resp, err := packet.Deserialize(buf[:n])
	if err != nil {
		return packet.Packet{}, fmt.Errorf("tsctl: decoding reply: %w", err)
	}
	return resp, nil
}

func printResponse(resp packet.Packet) {
	if resp.Flags.Has(packet.ERR) {
		name := "unknown"
		if resp.Tuple != nil {
			name = resp.Tuple.Name()
		}
		fmt.Println(color.Red(fmt.Sprintf("ERR %s", name)))
		return
	}
	if resp.Tuple == nil {
		fmt.Println(color.Yellow("ACK (no tuple)"))
		return
	}
	if resp.Flags.Has(packet.HELLO) {
		fmt.Println(color.Cyan(resp.Tuple.Name()))
		return
	}
	fmt.Println(color.Green(resp.Tuple.String()))
}
