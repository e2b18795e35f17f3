// Command weechat-tap connects to a WeeChat relay, authenticates, and
// either shows a live terminal viewer of decoded messages or logs every one
// of them to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mickamy/weechat-relay/broker"
	"github.com/mickamy/weechat-relay/metrics"
	"github.com/mickamy/weechat-relay/relay"
	"github.com/mickamy/weechat-relay/tui"
	"github.com/mickamy/weechat-relay/web"
	"github.com/mickamy/weechat-relay/wire"
)

var version = "dev"

func main() {
	fs := flag.NewFlagSet("weechat-tap", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "weechat-tap — watch WeeChat relay traffic in real-time\n\nUsage:\n  weechat-tap [flags] <addr>\n\nFlags:\n")
		fs.PrintDefaults()
	}

	password := fs.String("password", "", "relay password")
	ping := fs.String("ping", "", "optional text to echo with a ping after the handshake")
	httpAddr := fs.String("http", "", "HTTP server address for the web UI and /metrics (disabled if empty)")
	noTUI := fs.Bool("no-tui", false, "log every message to stdout instead of launching the interactive viewer")
	dialTimeout := fs.Duration("dial-timeout", 10*time.Second, "TCP dial timeout")
	showVersion := fs.Bool("version", false, "show version and exit")

	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("weechat-tap %s\n", version)
		return
	}

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	if err := run(fs.Arg(0), *password, *ping, *httpAddr, *dialTimeout, *noTUI); err != nil {
		log.Fatal(err)
	}
}

func run(addr, password, ping, httpAddr string, dialTimeout time.Duration, noTUI bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	netConn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("weechat-tap: dial %s: %w", addr, err)
	}

	conn := relay.New(netConn)
	if password != "" {
		conn.SetPassword(password)
	}

	collector := metrics.New()
	conn.SetMetrics(collector)

	b := broker.New()
	for _, id := range relay.KnownEventIDs() {
		conn.RegisterEventHandler(id, func(_ *relay.Connection, msg *wire.Message) {
			b.Publish(msg)
		})
	}

	log.Printf("weechat-tap: connecting to %s", addr)
	if err := conn.Init(ctx); err != nil {
		return fmt.Errorf("weechat-tap: handshake: %w", err)
	}
	log.Printf("weechat-tap: connection %s ready", conn.ID)

	if ping != "" {
		text, err := conn.Ping(ctx, ping)
		if err != nil {
			return fmt.Errorf("weechat-tap: ping: %w", err)
		}
		log.Printf("weechat-tap: pong: %q", text)
	}

	var webSrv *web.Server
	if httpAddr != "" {
		var lc net.ListenConfig
		httpLis, err := lc.Listen(ctx, "tcp", httpAddr)
		if err != nil {
			return fmt.Errorf("weechat-tap: listen http %s: %w", httpAddr, err)
		}
		webSrv = web.New(b, collector)
		go func() {
			log.Printf("weechat-tap: HTTP server listening on %s", httpAddr)
			if err := webSrv.Serve(httpLis); err != nil {
				log.Printf("weechat-tap: http serve: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = webSrv.Shutdown(shutdownCtx)
		}()
	}

	subID, ch := b.Subscribe(256)
	defer b.Unsubscribe(subID)

	if noTUI {
		return logEvents(ctx, ch)
	}
	return runTUI(ch)
}

func logEvents(ctx context.Context, ch <-chan *wire.Message) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			fmt.Println(wire.Dump(msg))
		}
	}
}

func runTUI(ch <-chan *wire.Message) error {
	p := tea.NewProgram(tui.New(ch), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("weechat-tap: tui: %w", err)
	}
	return nil
}
