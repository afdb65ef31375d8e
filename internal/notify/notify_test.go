package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"
)

func TestQueue_PushesJob(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := New(client, nil)

	mock.Regexp().ExpectLPush(queueKey, `.+`).SetVal(1)

	svc.Queue(context.Background(), 42, KindPrizeWon, "You won!", "Rank 1 prize credited to your wallet")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueue_RedisDownIsSwallowed(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := New(client, nil)

	mock.Regexp().ExpectLPush(queueKey, `.+`).SetErr(context.DeadlineExceeded)

	// Must not panic or propagate; notification loss is acceptable.
	svc.Queue(context.Background(), 42, KindPaymentSuccess, "Payment received", "Entry confirmed")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRoundTrip(t *testing.T) {
	job := Job{UserID: 7, Kind: KindRoomPublished, Title: "Room is live", Body: "ID 123 / pass xyz"}

	data, err := json.Marshal(job)
	require.NoError(t, err)

	var decoded Job
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, job.UserID, decoded.UserID)
	require.Equal(t, job.Kind, decoded.Kind)
}
