package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"sync"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/gopacket/gopacket/pcapgo"
	"github.com/gopacket/gopacket/tcpassembly"
	"github.com/gopacket/gopacket/tcpassembly/tcpreader"

	"github.com/ossf/passive-analysis/pkg/api/exchange"
)

// connKey identifies a TCP connection by the flows from client to server.
type connKey struct {
	net, tcp gopacket.Flow
}

// conn collects the HTTP messages seen on a single connection.
type conn struct {
	order     int
	server    string
	requests  []string
	responses []*exchange.Exchange
}

// streamFactory implements tcpassembly.StreamFactory. Every stream is read
// in its own goroutine until it ends.
type streamFactory struct {
	ctx   context.Context
	wg    sync.WaitGroup
	mu    sync.Mutex
	conns map[connKey]*conn

	// seen holds the order in which connections were first seen, under the
	// key for each direction.
	seen map[connKey]int
}

func newStreamFactory(ctx context.Context) *streamFactory {
	return &streamFactory{
		ctx:   ctx,
		conns: make(map[connKey]*conn),
		seen:  make(map[connKey]int),
	}
}

func (f *streamFactory) conn(key connKey) *conn {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conns[key]
	if !ok {
		c = &conn{
			order:  f.seen[key],
			server: net.JoinHostPort(key.net.Dst().String(), key.tcp.Dst().String()),
		}
		f.conns[key] = c
	}
	return c
}

func (f *streamFactory) New(netFlow, tcpFlow gopacket.Flow) tcpassembly.Stream {
	f.mu.Lock()
	key := connKey{netFlow, tcpFlow}
	if _, ok := f.seen[key]; !ok {
		n := len(f.seen) / 2
		f.seen[key] = n
		f.seen[connKey{netFlow.Reverse(), tcpFlow.Reverse()}] = n
	}
	f.mu.Unlock()

	r := tcpreader.NewReaderStream()
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.readStream(netFlow, tcpFlow, bufio.NewReader(&r))
	}()
	return &r
}

// readStream reads HTTP requests or responses, depending on which direction
// the stream carries, until the stream ends or is not HTTP.
func (f *streamFactory) readStream(netFlow, tcpFlow gopacket.Flow, buf *bufio.Reader) {
	defer tcpreader.DiscardBytesToEOF(buf)

	prefix, err := buf.Peek(5)
	if err != nil {
		return
	}
	if string(prefix) != "HTTP/" {
		f.readRequests(f.conn(connKey{netFlow, tcpFlow}), buf)
		return
	}

	c := f.conn(connKey{netFlow.Reverse(), tcpFlow.Reverse()})
	for {
		resp, err := http.ReadResponse(buf, nil)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.DebugContext(f.ctx, "stopped reading HTTP responses", "server", c.server, "error", err)
			}
			return
		}
		ex, err := FromResponse("", resp)
		if err != nil {
			slog.DebugContext(f.ctx, "failed to read HTTP response", "server", c.server, "error", err)
			return
		}
		f.mu.Lock()
		c.responses = append(c.responses, ex)
		f.mu.Unlock()
	}
}

func (f *streamFactory) readRequests(c *conn, buf *bufio.Reader) {
	for {
		req, err := http.ReadRequest(buf)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.DebugContext(f.ctx, "stopped reading HTTP requests", "server", c.server, "error", err)
			}
			return
		}
		host := req.Host
		if host == "" {
			host = c.server
		}
		url := "http://" + host + req.RequestURI
		if _, err := io.Copy(io.Discard, req.Body); err != nil {
			return
		}
		req.Body.Close()

		f.mu.Lock()
		c.requests = append(c.requests, url)
		f.mu.Unlock()
	}
}

// exchanges returns every response seen, ordered by when its connection was
// first seen and then by position on the connection. Each response is given
// the URL of the request at the same position.
func (f *streamFactory) exchanges() []*exchange.Exchange {
	f.mu.Lock()
	defer f.mu.Unlock()

	conns := make([]*conn, 0, len(f.conns))
	for _, c := range f.conns {
		conns = append(conns, c)
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].order < conns[j].order })

	var out []*exchange.Exchange
	for _, c := range conns {
		for i, ex := range c.responses {
			ex.URL = "http://" + c.server + "/"
			if i < len(c.requests) {
				ex.URL = c.requests[i]
			}
			out = append(out, ex)
		}
	}
	return out
}

/*
ReadPCAP reassembles the TCP streams in the pcap file read from r and returns
every HTTP response found in them.

Responses are matched with the request at the same position on their
connection to recover their URL. Packets that are not TCP are ignored, as are
TCP streams that do not carry HTTP/1.x.
*/
func ReadPCAP(ctx context.Context, r io.Reader) ([]*exchange.Exchange, error) {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read pcap: %w", err)
	}

	factory := newStreamFactory(ctx)
	assembler := tcpassembly.NewAssembler(tcpassembly.NewStreamPool(factory))
	source := gopacket.NewPacketSource(pr, pr.LinkType())
	source.Lazy = true
	source.NoCopy = true

	var readErr error
	for readErr == nil {
		if readErr = ctx.Err(); readErr != nil {
			break
		}
		packet, err := source.NextPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				slog.WarnContext(ctx, "pcap file is truncated")
				break
			}
			slog.DebugContext(ctx, "skipping undecodable packet", "error", err)
			continue
		}

		network := packet.NetworkLayer()
		tcp, ok := packet.TransportLayer().(*layers.TCP)
		if network == nil || !ok {
			continue
		}
		assembler.AssembleWithTimestamp(network.NetworkFlow(), tcp, packet.Metadata().Timestamp)
	}

	assembler.FlushAll()
	factory.wg.Wait()
	if readErr != nil {
		return nil, readErr
	}
	return factory.exchanges(), nil
}
