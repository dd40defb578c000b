package integration

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/config"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/credential"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/ingest"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/metrics"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/ratelimit"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/server"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/server/endpoints"
	gormstore "github.com/doodlesbykumbi/threadly-in-go/pkg/server/store/gorm"
)

// ServerInstance represents a running threadly server for the suite
type ServerInstance struct {
	ServerURL string
	Port      int
	cancel    context.CancelFunc
	process   *serverProcess
}

// Stop shuts the server down
func (s *ServerInstance) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.process != nil {
		s.process.stop()
	}
}

// freePort asks the kernel for an unused port.
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// startInlineServer runs the server in-process with the default policy
func startInlineServer(database *gorm.DB) (*ServerInstance, error) {
	port, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate port: %w", err)
	}

	hasher := credential.NewHasher(bcrypt.MinCost)
	topics := gormstore.NewTopicsStore(database, hasher)
	messages := gormstore.NewMessagesStore(database)
	accessLogs := gormstore.NewAccessLogStore(database)
	m := metrics.New()

	pipeline := ingest.New(topics, messages, accessLogs, hasher,
		ratelimit.New(accessLogs, ratelimit.DefaultPolicy),
		ingest.WithObserver(m),
	)

	cfg := &config.ThreadlyConfig{MaxPayloadBytes: 1 << 20}
	s := server.NewServer(pipeline, gormstore.NewHealthStore(database), m,
		func() *config.ThreadlyConfig { return cfg }, zap.NewNop(), "127.0.0.1", strconv.Itoa(port))
	endpoints.RegisterAll(s)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = s.Start(ctx)
	}()

	return &ServerInstance{
		ServerURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:      port,
		cancel:    cancel,
	}, nil
}

// startBinaryServer starts the threadlyctl server binary
func startBinaryServer(binaryPath, dbURL string) (*ServerInstance, error) {
	port, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate port: %w", err)
	}

	// Migrations already ran during setup
	cmd := exec.Command(binaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", strconv.Itoa(port))
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+dbURL,
		"THREADLY_AUDIT_ENABLED=false",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start binary: %w", err)
	}

	return &ServerInstance{
		ServerURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:      port,
		process:   &serverProcess{cmd: cmd},
	}, nil
}
