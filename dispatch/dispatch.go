// Package dispatch maps decoded request packets to tuple-store
// operations and assembles the response packet. The Dispatcher has no
// network dependency of its own -- it is a function of
// (store, retransmit cache, packet) -> packet; only cmd/tsd touches
// the listener.
package dispatch

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/keybase/saltpack/encoding/basex"

	lru "github.com/hashicorp/golang-lru"
	"github.com/op/go-logging"
	uuid "github.com/satori/go.uuid"

	"github.com/julianuziemblo/tuple-space/packet"
	"github.com/julianuziemblo/tuple-space/store"
	"github.com/julianuziemblo/tuple-space/tuple"
	"github.com/julianuziemblo/tuple-space/tsversion"
)

// CacheSize bounds the retransmit-reply cache: the most recent
// responses, keyed by request num, kept around so a RETRANSMIT can be
// answered by replaying the prior reply instead of re-running a
// possibly non-idempotent IN/INP.
const CacheSize = 4096

// Dispatcher holds the shared, per-process state the dispatch function
// needs: the tuple store and the retransmit-reply cache. It carries no
// per-client state.
type Dispatcher struct {
	Store *store.Store
	cache *lru.Cache
	log   *logging.Logger
}

// New builds a Dispatcher over an existing Store.
func New(st *store.Store, log *logging.Logger) (*Dispatcher, error) {
	cache, err := lru.New(CacheSize)
	if err != nil {
		return nil, fmt.Errorf("dispatch: building retransmit cache: %w", err)
	}
	return &Dispatcher{Store: st, cache: cache, log: log}, nil
}

// HandleBytes decodes buf, routes the request, and returns the
// serialized response. A packet that fails to decode produces an
// EMPTY/ERR response whose tuple name encodes the error category --
// this is the only place a decode failure is observable.
func (d *Dispatcher) HandleBytes(buf []byte) []byte {
	traceID := newTraceID()

	req, err := packet.Deserialize(buf)
	if err != nil {
		d.log.Debug(traceID, "malformed packet:", err)
		return packet.Serialize(errorResponse(err))
	}

	resp := d.Handle(traceID, req)
	return packet.Serialize(resp)
}

// Handle routes one already-decoded request to its store operation and
// returns the response packet.
func (d *Dispatcher) Handle(traceID string, req packet.Packet) packet.Packet {
	if req.Flags.Has(packet.RETRANSMIT) {
		if cached, ok := d.cache.Get(req.Num); ok {
			d.log.Debug(traceID, "serving cached reply for retransmitted num", numString(req.Num))
			return cached.(packet.Packet)
		}
	}

	resp := d.route(traceID, req)

	// Only OUT's effect (store de-duplication) is naturally idempotent
	// under RETRANSMIT; caching every reply lets a retransmitted
	// IN/INP/RD/RDP also observe the original answer instead of
	// re-consulting the store a second time.
	d.cache.Add(req.Num, resp)
	return resp
}

func (d *Dispatcher) route(traceID string, req packet.Packet) packet.Packet {
	// ERR is a response-only flag; a request carrying it is malformed.
	if req.Flags.Has(packet.ERR) {
		d.log.Debug(traceID, "rejecting request with ERR flag set")
		return errorResponse(fmt.Errorf("dispatch: %w: ERR flag on a request", tuple.ErrInvalidFormat))
	}
	switch req.Opcode {
	case packet.EMPTY:
		return d.handleEmpty(req)
	case packet.OUT:
		return d.handleOut(req)
	case packet.RD:
		return d.handleRead(req, true)
	case packet.RDP:
		return d.handleRead(req, false)
	case packet.IN:
		return d.handleTake(req, true)
	case packet.INP:
		return d.handleTake(req, false)
	default:
		d.log.Warning(traceID, "unknown opcode", req.Opcode)
		return errorResponse(fmt.Errorf("dispatch: %w: unknown opcode %d", tuple.ErrInvalidFormat, req.Opcode))
	}
}

func (d *Dispatcher) handleEmpty(req packet.Packet) packet.Packet {
	flags := packet.ACK
	b := packet.NewBuilder().
		Opcode(packet.EMPTY).
		Num((req.Num + 1) % packet.MaxNum)
	if req.Flags.Has(packet.HELLO) {
		flags |= packet.HELLO
		b = b.Tuple(greetingTuple())
	}
	p, err := b.Flags(flags).Build()
	if err != nil {
		return errorResponse(err)
	}
	return p
}

// greetingTuple carries the server's build version as free text in
// the reply's tuple name; it is not a new wire field, just how this
// server chooses to use the existing one.
func greetingTuple() tuple.Tuple {
	name := fmt.Sprintf("hello tuplespace %s", tsversion.Current)
	if len(name) > tuple.MaxNameLen {
		name = name[:tuple.MaxNameLen]
	}
	t, err := tuple.New(name)
	if err != nil {
		// name was truncated to MaxNameLen above, so this cannot fail.
		return tuple.Tuple{}
	}
	return t
}

func (d *Dispatcher) handleOut(req packet.Packet) packet.Packet {
	if req.Tuple == nil {
		return errorResponse(fmt.Errorf("dispatch: %w: OUT requires a tuple body", tuple.ErrInvalidFormat))
	}
	d.Store.Add(*req.Tuple)
	return ackEcho(req, packet.EMPTY, nil)
}

func (d *Dispatcher) handleRead(req packet.Packet, blocking bool) packet.Packet {
	if req.Tuple == nil {
		return errorResponse(fmt.Errorf("dispatch: %w: RD/RDP requires a template", tuple.ErrInvalidFormat))
	}
	var (
		match tuple.Tuple
		ok    bool
	)
	if blocking {
		match, ok = d.Store.BlockingRead(*req.Tuple, nil)
	} else {
		match, ok = d.Store.Read(*req.Tuple)
	}
	opcode := packet.RD
	if !blocking {
		opcode = packet.RDP
	}
	if !ok {
		return missResponse(req, opcode)
	}
	return ackEcho(req, opcode, &match)
}

func (d *Dispatcher) handleTake(req packet.Packet, blocking bool) packet.Packet {
	if req.Tuple == nil {
		return errorResponse(fmt.Errorf("dispatch: %w: IN/INP requires a template", tuple.ErrInvalidFormat))
	}
	var (
		match tuple.Tuple
		ok    bool
	)
	if blocking {
		match, ok = d.Store.BlockingTake(*req.Tuple, nil)
	} else {
		match, ok = d.Store.Take(*req.Tuple)
	}
	opcode := packet.IN
	if !blocking {
		opcode = packet.INP
	}
	if !ok {
		return missResponse(req, opcode)
	}
	return ackEcho(req, opcode, &match)
}

func ackEcho(req packet.Packet, opcode packet.Opcode, result *tuple.Tuple) packet.Packet {
	b := packet.NewBuilder().Opcode(opcode).Flags(packet.ACK).Num(req.Num)
	if result != nil {
		b = b.Tuple(*result)
	}
	p, err := b.Build()
	if err != nil {
		return errorResponse(err)
	}
	return p
}

func missResponse(req packet.Packet, opcode packet.Opcode) packet.Packet {
	p, err := packet.NewBuilder().
		Opcode(opcode).
		Flags(packet.ACK | packet.ERR).
		Num(req.Num).
		Build()
	if err != nil {
		return errorResponse(err)
	}
	return p
}

// errorResponse builds the EMPTY/ERR reply for a malformed packet:
// the error category becomes the reply tuple's name, with zero fields.
func errorResponse(err error) packet.Packet {
	name := errorCategory(err)
	errTuple, tErr := tuple.New(name)
	b := packet.NewBuilder().Opcode(packet.EMPTY).Flags(packet.ERR)
	if tErr == nil {
		b = b.Tuple(errTuple)
	}
	p, buildErr := b.Build()
	if buildErr != nil {
		// Building the error response itself failed (e.g. the random
		// source is broken); fall back to num=0 rather than propagate.
		p, _ = packet.NewBuilder().Opcode(packet.EMPTY).Flags(packet.ERR).Num(0).Build()
	}
	return p
}

var errorCategories = []error{
	tuple.ErrNameError,
	tuple.ErrInvalidFormat,
	tuple.ErrUnsupportedType,
	tuple.ErrValueParseError,
	tuple.ErrInvalidLength,
	packet.ErrInvalidLength,
	packet.ErrTupleParseError,
	packet.ErrChecksumMismatch,
}

func errorCategory(err error) string {
	for _, cat := range errorCategories {
		if errors.Is(err, cat) {
			return cat.Error()
		}
	}
	return "InvalidFormat"
}

func newTraceID() string {
	id := uuid.NewV4()
	return id.String()
}

// numString renders a packet correlation num as base62 for log lines.
func numString(num uint32) string {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], num)
	return basex.Base62StdEncoding.EncodeToString(buf[:])
}
