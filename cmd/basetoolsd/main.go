package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"xdao.co/basetools/codec"
	"xdao.co/basetools/codecrpc"
	"xdao.co/basetools/internal/config"
	"xdao.co/basetools/internal/logging"

	_ "xdao.co/basetools/base32"
	_ "xdao.co/basetools/base58"
	_ "xdao.co/basetools/base64url"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run serves until ctx is done, then stops gracefully.
func run(ctx context.Context, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("basetoolsd", flag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", "", "JSON config file")
	listen := fs.String("listen", "", "listen address (overrides config)")
	logLevel := fs.String("log-level", "", "log level (overrides config)")
	listCodecs := fs.Bool("list-codecs", false, "List supported codecs and exit")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *listCodecs {
		for _, c := range codec.List() {
			if c.Description == "" {
				_, _ = fmt.Fprintf(out, "%s\n", c.Name)
				continue
			}
			_, _ = fmt.Fprintf(out, "%s\t%s\n", c.Name, c.Description)
		}
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	log, err := logging.New(cfg.LogLevel, errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	opts := []grpc.ServerOption{grpc.UnaryInterceptor(codecrpc.LoggingInterceptor(log))}
	if cfg.MaxMsgBytes > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(cfg.MaxMsgBytes), grpc.MaxSendMsgSize(cfg.MaxMsgBytes))
	}
	s := grpc.NewServer(opts...)
	if err := codecrpc.Register(s, cfg.Codecs); err != nil {
		log.WithError(err).Error("register services")
		return 2
	}

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		log.WithError(err).Error("listen")
		return 1
	}
	defer lis.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			s.GracefulStop()
		case <-done:
		}
	}()

	log.WithField("addr", lis.Addr().String()).WithField("codecs", cfg.Codecs).Info("basetoolsd listening")
	if err := s.Serve(lis); err != nil {
		log.WithError(err).Error("serve")
		return 1
	}
	return 0
}
