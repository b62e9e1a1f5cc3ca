package usecase_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/internal/usecase"
	"go-jobswipe-backend/pkg/queue"
)

// memStore is an in-memory stand-in for Postgres. It enforces the same unique
// constraints the schema does and serializes transactions.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	clock time.Time

	users map[string]domain.User
	jobs  map[int64]domain.Job

	apps   map[int64]*domain.Application
	appSeq int64

	matches    map[int64]*domain.Match
	matchByApp map[int64]int64
	matchSeq   int64

	rooms      map[int64]*domain.ChatRoom
	roomByPair map[[2]string]int64
	roomSeq    int64

	messages []domain.Message
	msgSeq   int64

	notifications []domain.Notification
	notifKeys     map[string]bool
	notifSeq      int64

	connections map[[2]string]bool

	userLookups int

	// beforePromote runs ahead of PromoteViewed, standing in for a concurrent writer.
	beforePromote func()

	failNotifications error
}

func newMemStore() *memStore {
	return &memStore{
		clock:       time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		users:       make(map[string]domain.User),
		jobs:        make(map[int64]domain.Job),
		apps:        make(map[int64]*domain.Application),
		matches:     make(map[int64]*domain.Match),
		matchByApp:  make(map[int64]int64),
		rooms:       make(map[int64]*domain.ChatRoom),
		roomByPair:  make(map[[2]string]int64),
		notifKeys:   make(map[string]bool),
		connections: make(map[[2]string]bool),
	}
}

// tick advances the store clock so ordering by time is deterministic.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) addUser(id, name, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = domain.User{ID: id, Name: name, Role: role, Email: id + "@example.com"}
}

func (s *memStore) addJob(id int64, companyID, title string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id] = domain.Job{ID: id, CompanyUserID: companyID, Title: title, IsActive: active}
}

func (s *memStore) connect(a, b string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	low, high := domain.NormalizePair(a, b)
	s.connections[[2]string{low, high}] = true
}

func (s *memStore) matchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

func (s *memStore) lookupCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userLookups
}

func (s *memStore) roomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

func (s *memStore) storedNotifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Notification(nil), s.notifications...)
}

func (s *memStore) enrichLocked(a domain.Application) domain.Application {
	job := s.jobs[a.JobID]
	a.CompanyUserID = job.CompanyUserID
	a.JobTitle = job.Title
	a.SeekerName = s.users[a.SeekerUserID].Name
	a.CompanyName = s.users[job.CompanyUserID].Name
	return a
}

func (s *memStore) matchViewLocked(m domain.Match) domain.Match {
	app := s.enrichLocked(*s.apps[m.ApplicationID])
	m.JobID = app.JobID
	m.JobTitle = app.JobTitle
	m.SeekerUserID = app.SeekerUserID
	m.SeekerName = app.SeekerName
	m.CompanyUserID = app.CompanyUserID
	m.CompanyName = app.CompanyName
	return m
}

// --- TxManager ---

type memTxKey struct{}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(context.WithValue(ctx, memTxKey{}, true))
}

// --- UserRepository ---

type memUsers struct{ *memStore }

func (r memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userLookups++
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

// --- JobRepository ---

type memJobs struct{ *memStore }

func (r memJobs) GetByID(_ context.Context, id int64) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &j, nil
}

// --- ApplicationRepository ---

type memApps struct{ *memStore }

func (r memApps) Exists(_ context.Context, seekerID string, jobID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.SeekerUserID == seekerID && a.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (r memApps) Create(_ context.Context, app *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.SeekerUserID == app.SeekerUserID && a.JobID == app.JobID {
			return domain.ErrDuplicateApplication
		}
	}
	r.appSeq++
	app.ID = r.appSeq
	app.AppliedAt = r.tick()
	stored := *app
	r.apps[app.ID] = &stored
	return nil
}

func (r memApps) GetByID(_ context.Context, id int64) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := r.enrichLocked(*a)
	return &out, nil
}

func (r memApps) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Application, error) {
	if ctx.Value(memTxKey{}) == nil {
		return nil, errors.New("GetByIDForUpdate outside transaction")
	}
	return r.GetByID(ctx, id)
}

func (r memApps) UpdateStatus(_ context.Context, id int64, status domain.ApplicationStatus, reviewedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Status = status
	a.ReviewedAt = &reviewedAt
	return nil
}

func (r memApps) PromoteViewed(_ context.Context, ids []int64, reviewedAt time.Time) ([]int64, error) {
	if r.beforePromote != nil {
		r.beforePromote()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var promoted []int64
	for _, id := range ids {
		if a, ok := r.apps[id]; ok && a.Status == domain.StatusPending {
			a.Status = domain.StatusViewed
			at := reviewedAt
			a.ReviewedAt = &at
			promoted = append(promoted, id)
		}
	}
	return promoted, nil
}

func (r memApps) list(filter func(*domain.Application) bool, less func(a, b domain.Application) bool, limit, offset int) ([]domain.Application, int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Application
	for _, a := range r.apps {
		if filter(a) {
			out = append(out, r.enrichLocked(*a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	total := int64(len(out))
	if offset >= len(out) {
		return []domain.Application{}, total
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total
}

func (r memApps) ListReviewable(_ context.Context, jobID int64, limit, offset int) ([]domain.Application, int64, error) {
	items, total := r.list(
		func(a *domain.Application) bool {
			return a.JobID == jobID && (a.Status == domain.StatusPending || a.Status == domain.StatusViewed)
		},
		func(a, b domain.Application) bool { return a.AppliedAt.Before(b.AppliedAt) },
		limit, offset)
	return items, total, nil
}

func (r memApps) ListBySeeker(_ context.Context, seekerID string, limit, offset int) ([]domain.Application, int64, error) {
	items, total := r.list(
		func(a *domain.Application) bool { return a.SeekerUserID == seekerID },
		func(a, b domain.Application) bool { return a.AppliedAt.After(b.AppliedAt) },
		limit, offset)
	return items, total, nil
}

func (r memApps) ListReviewedBySeeker(_ context.Context, seekerID string, limit, offset int) ([]domain.Application, int64, error) {
	items, total := r.list(
		func(a *domain.Application) bool { return a.SeekerUserID == seekerID && a.ReviewedAt != nil },
		func(a, b domain.Application) bool { return a.ReviewedAt.After(*b.ReviewedAt) },
		limit, offset)
	return items, total, nil
}

// --- MatchRepository ---

type memMatches struct{ *memStore }

func (r memMatches) CreateIfAbsent(_ context.Context, applicationID int64, matchedAt time.Time) (*domain.Match, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[applicationID]; !ok {
		return nil, false, domain.ErrNotFound
	}
	if id, ok := r.matchByApp[applicationID]; ok {
		m := r.matchViewLocked(*r.matches[id])
		return &m, false, nil
	}
	r.matchSeq++
	m := &domain.Match{ID: r.matchSeq, ApplicationID: applicationID, MatchedAt: matchedAt}
	r.matches[m.ID] = m
	r.matchByApp[applicationID] = m.ID
	out := r.matchViewLocked(*m)
	return &out, true, nil
}

func (r memMatches) GetByID(_ context.Context, id int64) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := r.matchViewLocked(*m)
	return &out, nil
}

func (r memMatches) listWhere(keep func(domain.Match) bool) []domain.Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Match
	for _, m := range r.matches {
		v := r.matchViewLocked(*m)
		if keep(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r memMatches) ListBySeeker(_ context.Context, seekerID string) ([]domain.Match, error) {
	return r.listWhere(func(m domain.Match) bool { return m.SeekerUserID == seekerID }), nil
}

func (r memMatches) ListByCompany(_ context.Context, companyID string) ([]domain.Match, error) {
	return r.listWhere(func(m domain.Match) bool { return m.CompanyUserID == companyID }), nil
}

// --- ChatRoomRepository ---

type memRooms struct{ *memStore }

func (r memRooms) InsertIfAbsent(_ context.Context, low, high string, matchID *int64) (*domain.ChatRoom, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if low >= high {
		return nil, false, errors.New("check constraint violated: user_low < user_high")
	}
	key := [2]string{low, high}
	if _, ok := r.roomByPair[key]; ok {
		return nil, false, nil
	}
	r.roomSeq++
	room := &domain.ChatRoom{ID: r.roomSeq, UserLow: low, UserHigh: high, MatchID: matchID, CreatedAt: r.tick()}
	r.rooms[room.ID] = room
	r.roomByPair[key] = room.ID
	out := *room
	return &out, true, nil
}

func (r memRooms) GetByPair(_ context.Context, low, high string) (*domain.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.roomByPair[[2]string{low, high}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *r.rooms[id]
	return &out, nil
}

func (r memRooms) GetByID(_ context.Context, id int64) (*domain.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *room
	return &out, nil
}

func (r memRooms) AttachMatch(_ context.Context, roomID, matchID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[roomID]; ok && room.MatchID == nil {
		id := matchID
		room.MatchID = &id
	}
	return nil
}

func (r memRooms) ListForUser(_ context.Context, userID string) ([]domain.RoomListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.RoomListing
	for _, room := range r.rooms {
		if !room.HasParticipant(userID) {
			continue
		}
		l := domain.RoomListing{Room: *room}
		otherID, _ := room.OtherParticipant(userID)
		if u, ok := r.users[otherID]; ok {
			l.OtherUser = &domain.Participant{UserID: u.ID, Name: u.Name, Role: u.Role, Headline: memHeadlines[u.Role]}
		}
		for i := range r.messages {
			m := r.messages[i]
			if m.ChatRoomID != room.ID {
				continue
			}
			last := m
			l.LastMessage = &last
			if m.SenderID != userID && m.Status != domain.MessageRead {
				l.UnreadCount++
			}
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Room.CreatedAt.After(out[j].Room.CreatedAt) })
	return out, nil
}

// --- MessageRepository ---

type memMessages struct{ *memStore }

func (r memMessages) Create(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgSeq++
	msg.ID = r.msgSeq
	msg.CreatedAt = r.tick()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r memMessages) ListByRoom(_ context.Context, roomID int64) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.messages {
		if m.ChatRoomID == roomID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memMessages) MarkRead(_ context.Context, roomID int64, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.messages {
		m := &r.messages[i]
		if m.ChatRoomID == roomID && m.SenderID != userID && m.Status != domain.MessageRead {
			m.Status = domain.MessageRead
			n++
		}
	}
	return n, nil
}

func (r memMessages) CountUnread(_ context.Context, roomID int64, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.ChatRoomID == roomID && m.SenderID != userID && m.Status != domain.MessageRead {
			n++
		}
	}
	return n, nil
}

func (r memMessages) CountUnreadTotal(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		room := r.rooms[m.ChatRoomID]
		if room.HasParticipant(userID) && m.SenderID != userID && m.Status != domain.MessageRead {
			n++
		}
	}
	return n, nil
}

// --- NotificationRepository ---

type memNotifications struct{ *memStore }

func (r memNotifications) Create(_ context.Context, n *domain.Notification) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNotifications != nil {
		return false, r.failNotifications
	}
	if n.DeliveryKey != "" && r.notifKeys[n.DeliveryKey] {
		return false, nil
	}
	r.notifSeq++
	n.ID = r.notifSeq
	n.CreatedAt = r.tick()
	r.notifications = append(r.notifications, *n)
	r.notifKeys[n.DeliveryKey] = true
	return true, nil
}

func (r memNotifications) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNotifications != nil {
		return nil, 0, r.failNotifications
	}
	var mine []domain.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].UserID == userID {
			mine = append(mine, r.notifications[i])
		}
	}
	total := int64(len(mine))
	if offset >= len(mine) {
		return []domain.Notification{}, total, nil
	}
	mine = mine[offset:]
	if len(mine) > limit {
		mine = mine[:limit]
	}
	return mine, total, nil
}

func (r memNotifications) CountUnread(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, x := range r.notifications {
		if x.UserID == userID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

func (r memNotifications) MarkRead(_ context.Context, id int64, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].UserID == userID {
			r.notifications[i].IsRead = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r memNotifications) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.notifications {
		if r.notifications[i].UserID == userID && !r.notifications[i].IsRead {
			r.notifications[i].IsRead = true
			n++
		}
	}
	return n, nil
}

// --- ConnectionGraph ---

type memGraph struct{ *memStore }

func (r memGraph) IsConnected(_ context.Context, a, b string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	low, high := domain.NormalizePair(a, b)
	return r.connections[[2]string{low, high}], nil
}

// --- Profile lookups ---

var memHeadlines = map[string]string{
	domain.RoleSeeker:  "Backend Developer",
	domain.RoleCompany: "Software",
}

type memProfiles struct {
	*memStore
	headline string
}

func (r memProfiles) Lookup(_ context.Context, userID string) (*domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Participant{UserID: userID, Name: u.Name, Headline: r.headline}, nil
}

// --- Realtime and notification doubles ---

type publishedEvent struct {
	Topic string
	Event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Event: event})
}

func (p *recordingPublisher) onTopic(topic string) []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.Event
	for _, e := range p.events {
		if ev, ok := e.Event.(domain.Event); ok && e.Topic == topic {
			out = append(out, ev)
		}
	}
	return out
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID string, kind domain.NotificationType, title, body string, relatedID *int64) {
	m.Called(ctx, userID, kind, title, body, relatedID)
}

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) Enqueue(ctx context.Context, t queue.Task) error {
	return m.Called(ctx, t).Error(0)
}

type fakePresence map[string]bool

func (p fakePresence) IsOnline(userID string) bool { return p[userID] }

func (p fakePresence) OnlineUsers() []string {
	var out []string
	for u, on := range p {
		if on {
			out = append(out, u)
		}
	}
	sort.Strings(out)
	return out
}

// --- fixture ---

const (
	seekerID  = "1a5d0c3e-0000-4000-8000-000000000001"
	companyID = "7f2b9e41-0000-4000-8000-000000000002"
	otherCo   = "8e3c1d52-0000-4000-8000-000000000003"
	stranger  = "9d4e2f63-0000-4000-8000-000000000004"
	jobID     = int64(100)
)

type fixture struct {
	store     *memStore
	publisher *recordingPublisher
	notifier  *MockNotifier
	chat      domain.ChatUsecase
	matches   domain.MatchUsecase
	apps      domain.ApplicationUsecase
}

func newFixture() *fixture {
	store := newMemStore()
	store.addUser(seekerID, "Ana Seeker", domain.RoleSeeker)
	store.addUser(companyID, "Acme Corp", domain.RoleCompany)
	store.addUser(otherCo, "Globex", domain.RoleCompany)
	store.addUser(stranger, "Mallory", domain.RoleSeeker)
	store.addJob(jobID, companyID, "Go Engineer", true)
	store.addJob(jobID+1, companyID, "Closed Role", false)
	store.addJob(jobID+2, otherCo, "Globex Role", true)

	publisher := &recordingPublisher{}
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return().Maybe()

	chat := usecase.NewChatUsecase(usecase.ChatDependencies{
		Rooms:    memRooms{store},
		Messages: memMessages{store},
		Users:    memUsers{store},
		Matches:  memMatches{store},
		Profiles: map[string]domain.ProfileLookup{
			domain.RoleSeeker:  memProfiles{store, memHeadlines[domain.RoleSeeker]},
			domain.RoleCompany: memProfiles{store, memHeadlines[domain.RoleCompany]},
		},
		Graph:     memGraph{store},
		Presence:  fakePresence{companyID: true},
		Publisher: publisher,
		Notifier:  notifier,
		Timeout:   time.Second,
	})
	matches := usecase.NewMatchUsecase(memMatches{store}, chat, notifier, time.Second)
	apps := usecase.NewApplicationUsecase(memApps{store}, memJobs{store}, matches, store, nil, time.Second)

	return &fixture{store: store, publisher: publisher, notifier: notifier, chat: chat, matches: matches, apps: apps}
}

func (f *fixture) notifyCalls(kind domain.NotificationType) []mock.Call {
	var out []mock.Call
	for _, c := range f.notifier.Calls {
		if c.Method == "Notify" && c.Arguments.Get(2) == kind {
			out = append(out, c)
		}
	}
	return out
}
