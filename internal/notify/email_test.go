package notify

import (
	"bountywatch/internal/telemetry"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestEmailNotify(t *testing.T) {
	if os.Getenv("BOUNTYWATCH_DOCKER_TESTS") == "" {
		t.Skip("BOUNTYWATCH_DOCKER_TESTS is not set")
	}

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	ctx := context.Background()
	smtpServer, err := testcontainers.GenericContainer(
		ctx,
		testcontainers.GenericContainerRequest{
			Started: true,
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "haravich/fake-smtp-server",
				ExposedPorts: []string{"1025/tcp", "1080/tcp"},
				WaitingFor:   wait.ForLog("smtp://0.0.0.0:1025"),
			},
		},
	)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, smtpServer.Terminate(ctx))
	}()

	host, err := smtpServer.Host(ctx)
	require.NoError(t, err)
	smtpPort, err := smtpServer.MappedPort(ctx, "1025/tcp")
	require.NoError(t, err)
	webPort, err := smtpServer.MappedPort(ctx, "1080/tcp")
	require.NoError(t, err)

	mailer := NewEmail(EmailConfig{
		Server:   host,
		Port:     smtpPort.Int(),
		From:     "watcher@example.com",
		Password: "default",
		To:       []string{"me@example.com"},
	}, telemetry.NewRecorder())
	require.NoError(t, mailer.Notify(ctx, bounty))

	res, err := resty.New().R().
		Get(fmt.Sprintf("http://%s:%s/messages/1.plain", host, webPort.Port()))
	require.NoError(t, err)
	require.Contains(t, res.String(), "Price: $120")
	require.Contains(t, res.String(), "Author: alice")
}
