package database

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"quest-workers/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusTransport struct {
	status int
}

func (s statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	return &http.Response{
		StatusCode: s.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader("{}")),
		Request:    req,
	}, nil
}

func TestPostgresClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	client := NewPostgresFromDB(db)

	mock.ExpectPing()
	assert.NoError(t, client.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err = client.Ping(context.Background())
	assert.ErrorContains(t, err, "postgres ping failed")

	mock.ExpectClose()
	assert.NoError(t, client.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_WithTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	client := NewPostgresFromDB(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM templates").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err = client.WithTx(context.Background(), func(tx *sql.Tx) error {
		_, execErr := tx.Exec("DELETE FROM templates")
		return execErr
	})
	assert.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err = client.WithTx(context.Background(), func(*sql.Tx) error {
		return errors.New("abort")
	})
	assert.EqualError(t, err, "abort")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestNewRedis_ClosesUnderlyingClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedis(config.RedisConfig{Address: mr.Addr()})

	require.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
}

func TestElasticsearchClient_Ping(t *testing.T) {
	cfg := config.ElasticsearchConfig{Addresses: []string{"http://es.local:9200"}}

	ok, err := NewElasticsearchWithTransport(cfg, statusTransport{status: http.StatusOK})
	require.NoError(t, err)
	assert.NoError(t, ok.Ping(context.Background()))

	down, err := NewElasticsearchWithTransport(cfg, statusTransport{status: http.StatusServiceUnavailable})
	require.NoError(t, err)
	assert.Error(t, down.Ping(context.Background()))
}

type stubPinger struct {
	name string
	err  error
}

func (s stubPinger) Name() string { return s.name }
func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func TestPingAll(t *testing.T) {
	assert.NoError(t, PingAll(context.Background(), stubPinger{name: "a"}, nil))

	err := PingAll(context.Background(), stubPinger{name: "a"}, stubPinger{name: "redis", err: errors.New("down")})
	assert.EqualError(t, err, "redis: down")
}
