package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/iyunix/go-meddy/internal/domain"
	"github.com/iyunix/go-meddy/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	f.opts = append(f.opts, opts)
	info := &asynq.TaskInfo{Type: task.Type(), Queue: "default", State: asynq.TaskStatePending}
	for _, o := range opts {
		if o.Type() == asynq.TaskIDOpt {
			info.ID = o.Value().(string)
		}
	}
	return info, nil
}

type fakeInspector struct {
	infos []*asynq.TaskInfo
	err   error
	calls int
}

func (f *fakeInspector) GetTaskInfo(_, id string) (*asynq.TaskInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	i := f.calls - 1
	if i >= len(f.infos) {
		i = len(f.infos) - 1
	}
	info := *f.infos[i]
	info.ID = id
	return &info, nil
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.PollTimeout = 50 * time.Millisecond
	cfg.PollInterval = 5 * time.Millisecond
	return cfg
}

func TestStatusFromState(t *testing.T) {
	cases := map[asynq.TaskState]string{
		asynq.TaskStatePending:   StatusPending,
		asynq.TaskStateScheduled: StatusPending,
		asynq.TaskStateActive:    StatusStarted,
		asynq.TaskStateCompleted: StatusSuccess,
		asynq.TaskStateRetry:     StatusRetry,
		asynq.TaskStateArchived:  StatusFailure,
	}
	for state, want := range cases {
		assert.Equal(t, want, StatusFromState(state), state.String())
	}
}

func TestEnqueueChatMessage(t *testing.T) {
	enq := &fakeEnqueuer{}
	c := newClient(testConfig(), enq, &fakeInspector{}, nil)

	id, err := c.EnqueueChatMessage(context.Background(), ChatMessagePayload{BotID: "b", UserID: "u", UserMessage: "hi"})
	require.NoError(t, err)
	assert.Len(t, id, 36)

	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TypeChatMessage, enq.tasks[0].Type())
	assert.JSONEq(t, `{"bot_id":"b","user_id":"u","user_message":"hi"}`, string(enq.tasks[0].Payload()))

	var types []asynq.OptionType
	for _, o := range enq.opts[0] {
		types = append(types, o.Type())
	}
	assert.Contains(t, types, asynq.QueueOpt)
	assert.Contains(t, types, asynq.RetentionOpt)
}

func TestEnqueueError(t *testing.T) {
	c := newClient(testConfig(), &fakeEnqueuer{err: errors.New("redis down")}, &fakeInspector{}, nil)
	_, err := c.EnqueueDocumentIndex(context.Background(), DocumentIndexPayload{DocumentID: 1})
	assert.ErrorContains(t, err, "redis down")
}

func TestStatusCompletedCarriesResult(t *testing.T) {
	insp := &fakeInspector{infos: []*asynq.TaskInfo{{
		State:  asynq.TaskStateCompleted,
		Result: []byte(`{"role":"assistant","content":"ok"}`),
	}}}
	c := newClient(testConfig(), &fakeEnqueuer{}, insp, nil)

	st, err := c.Status(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, st.Status)
	assert.JSONEq(t, `{"role":"assistant","content":"ok"}`, string(st.Result))
	assert.True(t, st.Done())
}

func TestStatusUnknownTaskIsPending(t *testing.T) {
	c := newClient(testConfig(), &fakeEnqueuer{}, &fakeInspector{err: asynq.ErrTaskNotFound}, nil)
	st, err := c.Status(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, st.Status)
	assert.Equal(t, "null", string(st.Result))
}

func TestStatusArchivedReportsError(t *testing.T) {
	insp := &fakeInspector{infos: []*asynq.TaskInfo{{State: asynq.TaskStateArchived, LastErr: "boom"}}}
	c := newClient(testConfig(), &fakeEnqueuer{}, insp, nil)
	st, err := c.Status(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, StatusFailure, st.Status)
	assert.Equal(t, "boom", st.Error)
}

func TestWaitReturnsWhenDone(t *testing.T) {
	insp := &fakeInspector{infos: []*asynq.TaskInfo{
		{State: asynq.TaskStatePending},
		{State: asynq.TaskStateActive},
		{State: asynq.TaskStateCompleted, Result: []byte(`{"content":"x"}`)},
	}}
	c := newClient(testConfig(), &fakeEnqueuer{}, insp, nil)

	st, timedOut, err := c.Wait(context.Background(), "t")
	require.NoError(t, err)
	assert.False(t, timedOut)
	assert.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, 3, insp.calls)
}

func TestWaitTimesOut(t *testing.T) {
	insp := &fakeInspector{infos: []*asynq.TaskInfo{{State: asynq.TaskStateActive}}}
	c := newClient(testConfig(), &fakeEnqueuer{}, insp, nil)

	st, timedOut, err := c.Wait(context.Background(), "t")
	require.NoError(t, err)
	assert.True(t, timedOut)
	assert.Equal(t, StatusStarted, st.Status)
}

func TestWaitHonoursContext(t *testing.T) {
	insp := &fakeInspector{infos: []*asynq.TaskInfo{{State: asynq.TaskStatePending}}}
	c := newClient(testConfig(), &fakeEnqueuer{}, insp, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := c.Wait(ctx, "t")
	assert.ErrorIs(t, err, context.Canceled)
}

type stubChat struct{ bot, user, query string }

func (s *stubChat) HandleMessage(_ context.Context, botID, userID, query string) domain.ChatMessage {
	s.bot, s.user, s.query = botID, userID, query
	return domain.AssistantMessage("answer")
}

type stubIndexer struct {
	id  uint
	err error
}

func (s *stubIndexer) IndexDocument(_ context.Context, id uint, _, _ string) (int, error) {
	s.id = id
	return 4, s.err
}

type outcomes map[string]int

func (o outcomes) ObserveTask(taskType string, err error) {
	if err != nil {
		o[taskType+":error"]++
		return
	}
	o[taskType+":ok"]++
}

func TestServeMuxDispatches(t *testing.T) {
	chat := &stubChat{}
	indexer := &stubIndexer{}
	seen := outcomes{}
	mux := NewServeMux(NewHandlers(chat, indexer, nil), seen, nil)

	task, err := NewChatMessageTask(ChatMessagePayload{BotID: "b", UserID: "u", UserMessage: "q"})
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))
	assert.Equal(t, "q", chat.query)

	task, err = NewDocumentIndexTask(DocumentIndexPayload{DocumentID: 9, Title: "t", Content: "c"})
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))
	assert.Equal(t, uint(9), indexer.id)

	indexer.err = errors.New("qdrant down")
	assert.Error(t, mux.ProcessTask(context.Background(), task))

	assert.Equal(t, outcomes{
		TypeChatMessage + ":ok":      1,
		TypeDocumentIndex + ":ok":    1,
		TypeDocumentIndex + ":error": 1,
	}, seen)
}

func TestWorkerMetricsAreScrapeable(t *testing.T) {
	recorder := metrics.New()
	mux := NewServeMux(NewHandlers(&stubChat{}, &stubIndexer{}, nil), recorder, nil)

	task, err := NewChatMessageTask(ChatMessagePayload{BotID: "b", UserID: "u", UserMessage: "q"})
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))

	srv := metrics.NewServer("127.0.0.1:0", recorder, nil)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Stop() })

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `meddy_tasks_total{outcome="success",type="chat:message"} 1`)
}

func TestBadPayloadSkipsRetry(t *testing.T) {
	h := NewHandlers(&stubChat{}, &stubIndexer{}, nil)
	err := h.HandleChatMessage(context.Background(), asynq.NewTask(TypeChatMessage, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.PollTimeout = time.Millisecond
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Queue = ""
	assert.Error(t, cfg.Validate())
}

func TestStatusJSONShape(t *testing.T) {
	b, err := json.Marshal(&Status{TaskID: "t", Status: StatusPending, Result: json.RawMessage("null")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"task_id":"t","status":"PENDING","task_result":null}`, string(b))
}
