package azblob_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore/azblob"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore/objectstoretest"
)

// Runs against a real account or Azurite when TEST_AZURE_STORAGE_CONNECTION_STRING is set.
func TestAzureBucket(t *testing.T) {
	conn := os.Getenv("TEST_AZURE_STORAGE_CONNECTION_STRING")
	if conn == "" {
		t.Skip("TEST_AZURE_STORAGE_CONNECTION_STRING not set, skipping Azure Blob integration test")
	}
	containerName := os.Getenv("TEST_AZURE_STORAGE_CONTAINER_NAME")
	if containerName == "" {
		containerName = "tracker-test"
	}

	b, err := azblob.NewFromConnectionString(conn, containerName)
	require.NoError(t, err)
	require.NoError(t, b.EnsureContainer(context.Background()))

	objectstoretest.Run(t, b, fmt.Sprintf("test-%d/", time.Now().UnixNano()))
}

func TestNewFromConnectionString_Invalid(t *testing.T) {
	_, err := azblob.NewFromConnectionString("not-a-connection-string", "c")
	require.Error(t, err)
}
