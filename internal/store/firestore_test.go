package store

import (
	"context"
	"os"
	"testing"

	"github.com/Lllllllleong/qualitydocs/internal/gcp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestFirestoreStore runs the shared contract against the Firestore emulator.
// It is skipped unless FIRESTORE_EMULATOR_HOST is set.
func TestFirestoreStore(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := gcp.NewFirestoreClient(ctx, gcp.GetEnv("PROJECT_ID", "qualitydocs-test"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	testStoreContract(t, func(t *testing.T) Store {
		prefix := "t" + uuid.NewString()[:8] + "_"
		return NewFirestoreStore(client, FirestoreConfig{
			DocumentsCollection: prefix + "documents",
			VersionsCollection:  prefix + "document_versions",
			CountersCollection:  prefix + "document_counters",
		})
	})
}
