package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"moodbot/catalog"
	"moodbot/database"
	"moodbot/domain"
	"moodbot/messages"
	redisstore "moodbot/redis"
	"moodbot/sessions"
	textcases "moodbot/text_cases"
)

type sentMessage struct {
	UserID int64
	Text   string
	KB     *messages.Keyboard
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeSender) Send(userID int64, text string, kb *messages.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{UserID: userID, Text: text, KB: kb})
	return nil
}

func (f *fakeSender) last(t *testing.T) sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatalf("nothing was sent")
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// failingStore ломает запись ответов, остальное делегирует
type failingStore struct {
	database.Store
	failAppend bool
}

func (s *failingStore) AppendResponse(ctx context.Context, r domain.ResponseRecord) error {
	if s.failAppend {
		return errors.New("disk full")
	}
	return s.Store.AppendResponse(ctx, r)
}

type testEnv struct {
	h        *ConversationHandler
	store    *failingStore
	sessions *sessions.MemoryStore
	sender   *fakeSender
}

func newTestEnv(t *testing.T, hour int) *testEnv {
	t.Helper()
	csv := database.NewCSVStore(t.TempDir(), database.DefaultUsersFile, database.DefaultResponsesFile, time.UTC)
	store := &failingStore{Store: csv}
	sess := sessions.NewMemoryStore(sessions.DefaultTTL)
	sender := &fakeSender{}

	h := NewConversationHandler(store, sess, catalog.Default(), sender, time.UTC)
	h.Now = func() time.Time { return time.Date(2024, 5, 6, hour, 0, 0, 0, time.UTC) }
	return &testEnv{h: h, store: store, sessions: sess, sender: sender}
}

func (e *testEnv) stage(t *testing.T, userID int64) sessions.Stage {
	t.Helper()
	s, err := e.sessions.Get(context.Background(), userID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return 0
	}
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	return s.Stage
}

func (e *testEnv) register(t *testing.T, userID int64, profession string) {
	t.Helper()
	ctx := context.Background()
	if err := e.h.HandleStart(ctx, Inbound{UserID: userID, Name: "Анна"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.h.HandleText(ctx, Inbound{UserID: userID, Text: profession}); err != nil {
		t.Fatalf("profession: %v", err)
	}
}

func TestRegistrationFlow(t *testing.T) {
	env := newTestEnv(t, 10)
	ctx := context.Background()

	if err := env.h.HandleStart(ctx, Inbound{UserID: 42, Name: "Анна"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	greeting := env.sender.last(t)
	if !strings.Contains(greeting.Text, `<a href="tg://user?id=42">Анна</a>`) {
		t.Fatalf("greeting should mention user: %q", greeting.Text)
	}
	if greeting.KB == nil || len(greeting.KB.Rows) != 11 {
		t.Fatalf("greeting should carry the profession keyboard: %+v", greeting.KB)
	}
	if got := env.stage(t, 42); got != sessions.StageAwaitingProfession {
		t.Fatalf("stage = %s, want awaiting_profession", got)
	}

	// неверный ввод не меняет стадию
	for _, bad := range []string{"Космонавт", "врач", ""} {
		if err := env.h.HandleText(ctx, Inbound{UserID: 42, Text: bad}); err != nil {
			t.Fatalf("text: %v", err)
		}
		if got := env.sender.last(t).Text; got != textcases.ChooseProfessionAgain {
			t.Fatalf("unexpected reprompt %q", got)
		}
		if got := env.stage(t, 42); got != sessions.StageAwaitingProfession {
			t.Fatalf("stage changed on invalid input: %s", got)
		}
	}

	if err := env.h.HandleText(ctx, Inbound{UserID: 42, Text: "Врач"}); err != nil {
		t.Fatalf("text: %v", err)
	}
	if got := env.sender.last(t); got.Text != textcases.Registered("Врач") || got.KB == nil || !got.KB.Remove {
		t.Fatalf("unexpected confirmation %+v", got)
	}
	if got := env.stage(t, 42); got != 0 {
		t.Fatalf("session should be cleared, stage %s", got)
	}

	user, err := env.store.GetUser(ctx, 42)
	if err != nil || user.Profession != "Врач" {
		t.Fatalf("user not stored: %+v, %v", user, err)
	}

	// повторный /start не начинает регистрацию
	if err := env.h.HandleStart(ctx, Inbound{UserID: 42, Name: "Анна"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := env.sender.last(t).Text; !strings.HasPrefix(got, "С возвращением") || !strings.Contains(got, "Врач") {
		t.Fatalf("expected welcome back, got %q", got)
	}
	if got := env.stage(t, 42); got != 0 {
		t.Fatalf("registered user must not get a session, stage %s", got)
	}
}

func TestQuizScenario(t *testing.T) {
	env := newTestEnv(t, 15)
	ctx := context.Background()
	env.register(t, 42, "Врач")

	if err := env.h.HandleQuiz(ctx, Inbound{UserID: 42}); err != nil {
		t.Fatalf("quiz: %v", err)
	}
	day, _ := catalog.Default().Quiz(domain.QuizDay)
	if got := env.sender.last(t); got.Text != day.Questions[0] {
		t.Fatalf("expected first day question, got %q", got.Text)
	}

	want := []sessions.Stage{sessions.StageQ1, sessions.StageQ2, sessions.StageQ3, sessions.StageQ4, 0}
	for i, stage := range want {
		if err := env.h.HandleText(ctx, Inbound{UserID: 42, Text: "Отлично/Да"}); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if got := env.stage(t, 42); got != stage {
			t.Fatalf("after answer %d stage = %s, want %s", i, got, stage)
		}
	}
	if got := env.sender.last(t); got.Text != textcases.QuizFinished || !got.KB.Remove {
		t.Fatalf("expected thank you, got %+v", got)
	}

	records, err := env.store.LoadResponses(ctx)
	if err != nil {
		t.Fatalf("load responses: %v", err)
	}
	if len(records) != domain.QuestionsPerQuiz {
		t.Fatalf("got %d records, want %d", len(records), domain.QuestionsPerQuiz)
	}
	for i, r := range records {
		if r.UserID != 42 || r.Profession != "Врач" || r.QuizType != domain.QuizDay || r.Score != 3 || r.Answer != "Отлично/Да" {
			t.Fatalf("unexpected record %d: %+v", i, r)
		}
		if r.Question != day.Questions[i] {
			t.Fatalf("record %d question %q, want %q", i, r.Question, day.Questions[i])
		}
	}
}

func TestQuizInvalidAnswerKeepsStage(t *testing.T) {
	env := newTestEnv(t, 8)
	ctx := context.Background()
	env.register(t, 7, "Водитель")

	if err := env.h.HandleQuiz(ctx, Inbound{UserID: 7}); err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if err := env.h.HandleText(ctx, Inbound{UserID: 7, Text: "Плохо/Нет"}); err != nil {
		t.Fatalf("answer: %v", err)
	}
	for _, bad := range []string{"хорошо", "3", "Отлично"} {
		if err := env.h.HandleText(ctx, Inbound{UserID: 7, Text: bad}); err != nil {
			t.Fatalf("answer: %v", err)
		}
		if got := env.sender.last(t).Text; got != textcases.ChooseAnswer {
			t.Fatalf("unexpected reprompt %q", got)
		}
		if got := env.stage(t, 7); got != sessions.StageQ1 {
			t.Fatalf("stage = %s, want q1", got)
		}
	}

	records, _ := env.store.LoadResponses(ctx)
	if len(records) != 1 || records[0].Score != 1 || records[0].QuizType != domain.QuizMorning {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestQuizRequiresRegistration(t *testing.T) {
	env := newTestEnv(t, 15)
	ctx := context.Background()

	if err := env.h.HandleQuiz(ctx, Inbound{UserID: 99}); err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if got := env.sender.last(t).Text; got != textcases.RegisterFirst {
		t.Fatalf("expected register first, got %q", got)
	}
	if got := env.stage(t, 99); got != 0 {
		t.Fatalf("no session expected, stage %s", got)
	}
	if err := env.h.HandleText(ctx, Inbound{UserID: 99, Text: "Отлично/Да"}); err != nil {
		t.Fatalf("text: %v", err)
	}
	records, _ := env.store.LoadResponses(ctx)
	if len(records) != 0 {
		t.Fatalf("no records expected, got %d", len(records))
	}
}

func TestStorageFailureKeepsStage(t *testing.T) {
	env := newTestEnv(t, 15)
	ctx := context.Background()
	env.register(t, 5, "Бухгалтер/Экономист")

	if err := env.h.HandleQuiz(ctx, Inbound{UserID: 5}); err != nil {
		t.Fatalf("quiz: %v", err)
	}
	env.store.failAppend = true
	if err := env.h.HandleText(ctx, Inbound{UserID: 5, Text: "Нормально/Частично"}); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got := env.sender.last(t).Text; got != textcases.SaveFailed {
		t.Fatalf("expected save failed message, got %q", got)
	}
	if got := env.stage(t, 5); got != sessions.StageQ0 {
		t.Fatalf("stage = %s, want q0", got)
	}

	env.store.failAppend = false
	if err := env.h.HandleText(ctx, Inbound{UserID: 5, Text: "Нормально/Частично"}); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got := env.stage(t, 5); got != sessions.StageQ1 {
		t.Fatalf("stage = %s, want q1", got)
	}
}

func TestCancelAndRestart(t *testing.T) {
	env := newTestEnv(t, 20)
	ctx := context.Background()
	env.register(t, 3, "Воспитатель")

	if err := env.h.HandleCancel(ctx, Inbound{UserID: 3}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := env.sender.last(t).Text; got != textcases.Cancelled {
		t.Fatalf("cancel without session should still reply, got %q", got)
	}

	if err := env.h.HandleQuiz(ctx, Inbound{UserID: 3}); err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if err := env.h.HandleText(ctx, Inbound{UserID: 3, Text: "Отлично/Да"}); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := env.h.HandleQuiz(ctx, Inbound{UserID: 3}); err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if got := env.stage(t, 3); got != sessions.StageQ0 {
		t.Fatalf("restart should reset to q0, got %s", got)
	}

	if err := env.h.HandleCancel(ctx, Inbound{UserID: 3}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := env.stage(t, 3); got != 0 {
		t.Fatalf("cancel should clear session, stage %s", got)
	}
	sent := env.sender.count()
	if err := env.h.HandleText(ctx, Inbound{UserID: 3, Text: "Отлично/Да"}); err != nil {
		t.Fatalf("text: %v", err)
	}
	if env.sender.count() != sent {
		t.Fatalf("text without session must be ignored")
	}
}

func TestAnswerWithoutUserRowUsesUnknownProfession(t *testing.T) {
	env := newTestEnv(t, 15)
	ctx := context.Background()

	// сессия осталась, а строки пользователя нет
	if err := env.sessions.Put(ctx, 11, sessions.Session{Stage: sessions.StageQ2, QuizType: domain.QuizEvening}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := env.h.HandleText(ctx, Inbound{UserID: 11, Text: "Плохо/Нет"}); err != nil {
		t.Fatalf("answer: %v", err)
	}
	records, _ := env.store.LoadResponses(ctx)
	if len(records) != 1 || records[0].Profession != domain.UnknownProfession {
		t.Fatalf("unexpected records %+v", records)
	}
	evening, _ := catalog.Default().Quiz(domain.QuizEvening)
	if records[0].Question != evening.Questions[2] {
		t.Fatalf("answer recorded for wrong question %q", records[0].Question)
	}
}

func TestCommandsAreNotAnswers(t *testing.T) {
	env := newTestEnv(t, 15)
	ctx := context.Background()
	env.register(t, 8, "Врач")
	if err := env.h.HandleQuiz(ctx, Inbound{UserID: 8}); err != nil {
		t.Fatalf("quiz: %v", err)
	}
	sent := env.sender.count()
	if err := env.h.HandleText(ctx, Inbound{UserID: 8, Text: "/help"}); err != nil {
		t.Fatalf("text: %v", err)
	}
	if env.sender.count() != sent || env.stage(t, 8) != sessions.StageQ0 {
		t.Fatalf("unknown commands must be ignored")
	}
}

func TestConcurrentUsersDoNotInterfere(t *testing.T) {
	env := newTestEnv(t, 15)
	ctx := context.Background()
	users := []int64{1, 2, 3, 4}
	for _, id := range users {
		env.register(t, id, "Врач")
		if err := env.h.HandleQuiz(ctx, Inbound{UserID: id}); err != nil {
			t.Fatalf("quiz: %v", err)
		}
	}

	var wg sync.WaitGroup
	for _, id := range users {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for i := 0; i < domain.QuestionsPerQuiz; i++ {
				if err := env.h.HandleText(ctx, Inbound{UserID: id, Text: "Нормально/Частично"}); err != nil {
					t.Errorf("answer: %v", err)
				}
			}
		}(id)
	}
	wg.Wait()

	records, err := env.store.LoadResponses(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != len(users)*domain.QuestionsPerQuiz {
		t.Fatalf("got %d records, want %d", len(records), len(users)*domain.QuestionsPerQuiz)
	}
}

func TestCancelDuringRegistration(t *testing.T) {
	env := newTestEnv(t, 10)
	ctx := context.Background()

	if err := env.h.HandleStart(ctx, Inbound{UserID: 21, Name: "Олег"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := env.h.HandleCancel(ctx, Inbound{UserID: 21}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := env.sender.last(t); got.Text != textcases.Cancelled || got.KB == nil || !got.KB.Remove {
		t.Fatalf("unexpected cancel reply %+v", got)
	}
	if got := env.stage(t, 21); got != 0 {
		t.Fatalf("cancel should clear registration, stage %s", got)
	}

	sent := env.sender.count()
	if err := env.h.HandleText(ctx, Inbound{UserID: 21, Text: "Врач"}); err != nil {
		t.Fatalf("text: %v", err)
	}
	if env.sender.count() != sent {
		t.Fatalf("profession after cancel must be ignored")
	}
	if _, err := env.store.GetUser(ctx, 21); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("user must not be stored after cancel, got %v", err)
	}
	users, err := env.store.LoadUsers(ctx)
	if err != nil || len(users) != 0 {
		t.Fatalf("expected no users, got %v, %v", users, err)
	}
}

func TestQuizSurvivesRedisOutage(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()

	env := newTestEnv(t, 8)
	env.h.Sessions = sessions.NewFallbackStore(
		redisstore.NewSessionStore(client, time.Hour),
		sessions.NewMemoryStore(time.Hour),
	)
	ctx := context.Background()
	env.register(t, 42, "Врач")

	if err := env.h.HandleQuiz(ctx, Inbound{UserID: 42}); err != nil {
		t.Fatalf("quiz: %v", err)
	}
	answer := func() {
		t.Helper()
		if err := env.h.HandleText(ctx, Inbound{UserID: 42, Text: "Отлично/Да"}); err != nil {
			t.Fatalf("answer: %v", err)
		}
	}

	answer() // q0, redis доступен
	mr.SetError("ERR down")
	answer() // q1
	answer() // q2
	mr.SetError("")
	answer() // q3

	records, err := env.store.LoadResponses(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	morning, _ := catalog.Default().Quiz(domain.QuizMorning)
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}
	for i, r := range records {
		if r.Question != morning.Questions[i] {
			t.Fatalf("record %d stored for %q, want %q", i, r.Question, morning.Questions[i])
		}
	}
	if got := env.sender.last(t).Text; got != morning.Questions[4] {
		t.Fatalf("expected last question, got %q", got)
	}

	answer() // q4
	if got := env.sender.last(t).Text; got != textcases.QuizFinished {
		t.Fatalf("expected thank you, got %q", got)
	}
	if mr.Exists("moodbot:session:42") {
		t.Fatalf("finished quiz must not leave a session in redis")
	}
}

func TestUserLocksAreBounded(t *testing.T) {
	env := newTestEnv(t, 10)
	if env.h.userLock(42) != env.h.userLock(42) {
		t.Fatalf("same user must always get the same lock")
	}
	if env.h.userLock(1) != env.h.userLock(1+lockStripes) {
		t.Fatalf("locks must be striped over a fixed set")
	}
	if len(env.h.locks) != lockStripes {
		t.Fatalf("unexpected number of locks %d", len(env.h.locks))
	}
}

func TestCatalogTextIsEscapedForHTML(t *testing.T) {
	env := newTestEnv(t, 15)
	ctx := context.Background()

	cat := catalog.Default()
	day := cat.Quizzes[domain.QuizDay]
	day.Intro = "Пауза <5 минут> & чай"
	day.Questions[0] = "Работа & отдых: что важнее?"
	cat.Quizzes[domain.QuizDay] = day
	env.h.Catalog = cat

	env.register(t, 9, "Врач")
	if err := env.h.HandleQuiz(ctx, Inbound{UserID: 9}); err != nil {
		t.Fatalf("quiz: %v", err)
	}
	env.sender.mu.Lock()
	intro := env.sender.sent[len(env.sender.sent)-2].Text
	env.sender.mu.Unlock()
	if intro != "Пауза &lt;5 минут&gt; &amp; чай" {
		t.Fatalf("intro not escaped: %q", intro)
	}
	if got := env.sender.last(t).Text; got != "Работа &amp; отдых: что важнее?" {
		t.Fatalf("question not escaped: %q", got)
	}

	if err := env.h.HandleText(ctx, Inbound{UserID: 9, Text: "Плохо/Нет"}); err != nil {
		t.Fatalf("answer: %v", err)
	}
	records, _ := env.store.LoadResponses(ctx)
	if len(records) != 1 || records[0].Question != "Работа & отдых: что важнее?" {
		t.Fatalf("record must keep the raw question text: %+v", records)
	}
}
