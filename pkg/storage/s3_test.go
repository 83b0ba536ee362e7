package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestArchiveKey(t *testing.T) {
	at := time.Date(2024, time.March, 7, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))
	require.Equal(t, "archives/2024/03/08/job-1.json", ArchiveKey(at, "job-1"))
}
