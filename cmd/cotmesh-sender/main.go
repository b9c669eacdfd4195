// Command cotmesh-sender reads one CoT XML document from stdin, encodes
// it into the ATAK plugin wire format, and sends it over the selected
// transport. It is the one-shot counterpart of cotmesh-gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/signalsfoundry/cotmesh/compact"
	"github.com/signalsfoundry/cotmesh/cot"
	"github.com/signalsfoundry/cotmesh/internal/logging"
	"github.com/signalsfoundry/cotmesh/mesh"
	"github.com/signalsfoundry/cotmesh/wire"
)

func main() {
	iface := flag.String("interface", "stdout", "transport: tcp or stdout")
	host := flag.String("host", "localhost", "TCP host (tcp transport)")
	port := flag.Int("port", 4403, "TCP port (tcp transport)")
	channel := flag.Int("channel", 0, "mesh channel index")
	compress := flag.Bool("compress", false, "set the is_compressed flag on the payload")
	compactLimit := flag.Int("compact-limit", 0, "fall back to compact JSON when the binary payload exceeds this many bytes (0 disables)")
	timeout := flag.Duration("timeout", 10*time.Second, "send timeout")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	doc, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Error(ctx, "failed to read CoT from stdin", logging.Err(err))
		os.Exit(1)
	}
	if len(doc) == 0 {
		log.Error(ctx, "no CoT XML received on stdin")
		os.Exit(1)
	}

	var sender mesh.Sender
	switch *iface {
	case "tcp":
		sender = &mesh.TCPSender{
			Addr:    fmt.Sprintf("%s:%d", *host, *port),
			Timeout: *timeout,
		}
	case "stdout":
		sender = mesh.NewWriterSender(os.Stdout)
	default:
		log.Error(ctx, "unknown transport", logging.String("interface", *iface))
		os.Exit(1)
	}

	fields := cot.Extract(string(doc))
	enc := wire.Encoder{Log: log}
	payload := enc.Encode(fields, *compress)

	if *compactLimit > 0 && len(payload) > *compactLimit {
		log.Info(ctx, "payload over limit, sending compact form",
			logging.Int("binary_bytes", len(payload)),
			logging.Int("limit", *compactLimit),
		)
		payload = compact.FromFields(fields)
	}

	if err := sender.Send(ctx, payload, *channel); err != nil {
		log.Error(ctx, "send failed", logging.Err(err), logging.Int("channel", *channel))
		os.Exit(1)
	}
	log.Info(ctx, "sent CoT payload",
		logging.Int("payload_bytes", len(payload)),
		logging.Int("channel", *channel),
	)
}
