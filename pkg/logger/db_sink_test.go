package logger

import (
	"errors"
	"testing"

	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDBSinkStoresOnlyErrors(t *testing.T) {
	db := testutil.NewDB(t)
	sink := NewDBSink(db)

	log := WithSink(zap.NewNop(), sink)
	log.Info("ignored")
	log.Warn("ignored too")
	log.With(zap.String("component", "upload")).Error("thumbnail failed", zap.Error(errors.New("boom")), zap.Uint("file_id", 7))

	sink.Stop()

	var rows []models.AppErrorLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "error", rows[0].Level)
	assert.Equal(t, "thumbnail failed", rows[0].Message)
	assert.Contains(t, string(rows[0].Fields), `"component":"upload"`)
	assert.Contains(t, string(rows[0].Fields), `"error":"boom"`)
}

func TestDBSinkSyncFlushes(t *testing.T) {
	db := testutil.NewDB(t)
	sink := NewDBSink(db)
	defer sink.Stop()

	log := WithSink(zap.NewNop(), sink)
	log.Error("first")
	require.NoError(t, log.Sync())

	var count int64
	require.NoError(t, db.Model(&models.AppErrorLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
