package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hieuit01/BTL-CCNLTHD/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSNS struct {
	mu        sync.Mutex
	published []string
	failFor   string
}

func (f *fakeSNS) CreatePlatformEndpoint(_ context.Context, in *awssns.CreatePlatformEndpointInput, _ ...func(*awssns.Options)) (*awssns.CreatePlatformEndpointOutput, error) {
	return &awssns.CreatePlatformEndpointOutput{EndpointArn: aws.String("arn:endpoint/" + aws.ToString(in.Token))}, nil
}

func (f *fakeSNS) Publish(_ context.Context, in *awssns.PublishInput, _ ...func(*awssns.Options)) (*awssns.PublishOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	target := aws.ToString(in.TargetArn)
	if target == f.failFor {
		return nil, errors.New("endpoint disabled")
	}
	f.published = append(f.published, target)
	return &awssns.PublishOutput{}, nil
}

func TestPushServiceFanOut(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	sns := &fakeSNS{failFor: "arn:endpoint/tok-b"}
	push := &PushService{db: db, sns: sns, fcmPlatformArn: "arn:app/fcm", log: quietLogger()}
	alice := seedUser(t, db, "alice", models.RoleUser)

	_, err := push.RegisterDevice(ctx, alice.ID, "blackberry", "tok-x")
	assert.ErrorIs(t, err, ErrUnknownPlatform)

	first, err := push.RegisterDevice(ctx, alice.ID, "Android", "tok-a")
	require.NoError(t, err)
	assert.Equal(t, "android", first.Platform)
	again, err := push.RegisterDevice(ctx, alice.ID, "android", "tok-a")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	_, err = push.RegisterDevice(ctx, alice.ID, "ios", "tok-b")
	require.NoError(t, err)
	_, err = push.RegisterDevice(ctx, alice.ID, "ios", "tok-c")
	require.NoError(t, err)

	// one failing endpoint does not stop the others
	require.NoError(t, push.PushToUser(ctx, alice.ID, "Nhắc nhở", "Uống nước", nil))
	assert.ElementsMatch(t, []string{"arn:endpoint/tok-a", "arn:endpoint/tok-c"}, sns.published)

	require.NoError(t, SetNotifications(ctx, db, alice.ID, false))
	sns.published = nil
	require.NoError(t, push.PushToUser(ctx, alice.ID, "Nhắc nhở", "Uống nước", nil))
	assert.Empty(t, sns.published)
}
