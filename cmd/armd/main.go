package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"anoma.net/arm/compliance"
	"anoma.net/arm/config"
	"anoma.net/arm/keys"
	"anoma.net/arm/logx"
	"anoma.net/arm/proving"
	"anoma.net/arm/service"
	"anoma.net/arm/storage"
	"anoma.net/arm/storage/grpccas"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, errOut io.Writer) int {
	fs := flag.NewFlagSet("armd", flag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", "", "YAML config file (defaults apply when empty)")
	listen := fs.String("listen", "", "listen address (overrides config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	logCloser := logx.Setup(cfg.LogOptions())
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg); err != nil {
		logx.Error("ARMD", err)
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

// newServer wires the attestation backend, the verification cache and the
// archive from cfg. The returned cleanup closes the archive.
func newServer(ctx context.Context, cfg config.Config) (*service.Server, func() error, error) {
	ks, err := keys.CreateKeyStore(cfg.Prover.KeyDir)
	if err != nil {
		return nil, nil, err
	}
	signer, err := ks.Signer(cfg.Prover.Scheme, cfg.Prover.KeyName, cfg.Prover.Role)
	if err != nil {
		return nil, nil, fmt.Errorf("load prover key %q (create it with `arm key init` and `arm key derive`): %w", cfg.Prover.KeyName, err)
	}
	attestor := proving.NewAttestor(signer)
	attestor.Register(compliance.VerifyingKey, compliance.Circuit)
	logx.Info("ARMD", "prover key ", keys.KeyID(signer))

	srv := &service.Server{Prover: attestor, Verifier: attestor}
	if cfg.VerifyCache.TTL > 0 {
		cache := proving.NewCachingVerifier(attestor, cfg.VerifyCache.TTL)
		interval := cfg.VerifyCache.SweepInterval
		if interval <= 0 {
			interval = proving.DefaultSweepInterval
		}
		go cache.Run(ctx, interval)
		srv.Verifier = cache
	}

	cleanup := func() error { return nil }
	if cfg.Archive.Enabled() {
		cas, closeFn, err := cfg.Archive.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("open archive: %w", err)
		}
		srv.Archive = storage.NewArchive(cas)
		cleanup = closeFn
	}
	return srv, cleanup, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	srv, cleanup, err := newServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			logx.Warn("ARMD", "close archive: ", err)
		}
	}()

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return err
	}
	defer lis.Close()

	s := grpc.NewServer(
		grpc.MaxRecvMsgSize(cfg.MaxMsgBytes),
		grpc.MaxSendMsgSize(cfg.MaxMsgBytes),
		grpc.UnaryInterceptor(service.LoggingInterceptor),
	)
	service.RegisterArmServer(s, srv)
	if cfg.Archive.Serve && srv.Archive != nil {
		grpccas.RegisterArchiveServer(s, &grpccas.Server{Archive: srv.Archive})
		logx.Info("ARMD", "serving archive as ", grpccas.ServiceName)
	}

	go func() {
		<-ctx.Done()
		logx.Info("ARMD", "shutting down")
		s.GracefulStop()
	}()

	logx.Info("ARMD", "listening on ", lis.Addr().String())
	if err := s.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
