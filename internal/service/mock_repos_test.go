package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"school-link/internal/model"
	"school-link/internal/repository"
	pkgerrors "school-link/pkg/errors"
)

// 内存版 Repository 实现，行为与 PostgreSQL 版保持一致
// （条件更新零行返回 ErrOptimisticLock、唯一约束冲突静默跳过）

// ── mockUserRepo ──

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return fmt.Errorf("duplicate key value violates unique constraint")
		}
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.User
	for _, u := range m.users {
		if role == "" || u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

// ── mockStudentRepo ──

type mockStudentRepo struct {
	mu       sync.Mutex
	students map[string]*model.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if student.StudentID == "" {
		student.StudentID = fmt.Sprintf("student-%d", len(m.students)+1)
	}
	cp := *student
	m.students[student.StudentID] = &cp
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockStudentRepo) ListByParent(_ context.Context, parentID string) ([]model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Student
	for _, s := range m.students {
		if s.ParentID == parentID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockStudentRepo) List(_ context.Context) ([]model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Student
	for _, s := range m.students {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *student
	m.students[student.StudentID] = &cp
	return nil
}

// ── mockAbsenceRepo ──

type mockAbsenceRepo struct {
	mu       sync.Mutex
	reports  map[string]*model.AbsenceReport
	students *mockStudentRepo // GetByID 回填关联，模拟 Preload
	users    *mockUserRepo
}

func newMockAbsenceRepo(students *mockStudentRepo, users *mockUserRepo) *mockAbsenceRepo {
	return &mockAbsenceRepo{
		reports:  make(map[string]*model.AbsenceReport),
		students: students,
		users:    users,
	}
}

func (m *mockAbsenceRepo) Create(_ context.Context, report *model.AbsenceReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if report.AbsenceReportID == "" {
		report.AbsenceReportID = fmt.Sprintf("report-%d", len(m.reports)+1)
	}
	cp := *report
	cp.Teacher, cp.Student = nil, nil
	m.reports[report.AbsenceReportID] = &cp
	return nil
}

func (m *mockAbsenceRepo) GetByID(ctx context.Context, id string) (*model.AbsenceReport, error) {
	m.mu.Lock()
	r, ok := m.reports[id]
	if !ok {
		m.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	m.mu.Unlock()

	if student, err := m.students.GetByID(ctx, cp.StudentID); err == nil {
		cp.Student = student
	}
	if teacher, err := m.users.GetByID(ctx, cp.TeacherID); err == nil {
		cp.Teacher = teacher
	}
	return &cp, nil
}

func (m *mockAbsenceRepo) List(ctx context.Context, filter repository.AbsenceFilter) ([]model.AbsenceReport, error) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.reports))
	for id := range m.reports {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var out []model.AbsenceReport
	for _, id := range ids {
		r, err := m.GetByID(ctx, id)
		if err != nil {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.TeacherID != "" && r.TeacherID != filter.TeacherID {
			continue
		}
		if filter.StudentID != "" && r.StudentID != filter.StudentID {
			continue
		}
		if filter.ParentID != "" && (r.Student == nil || r.Student.ParentID != filter.ParentID) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockAbsenceRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, r := range m.reports {
		counts[r.Status]++
	}
	return counts, nil
}

func (m *mockAbsenceRepo) UpdateDecision(_ context.Context, report *model.AbsenceReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.reports[report.AbsenceReportID]
	if !ok || stored.Status != model.AbsenceStatusPending {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = report.Status
	stored.MakeupStatus = report.MakeupStatus
	stored.DecidedAt = report.DecidedAt
	stored.DecidedBy = report.DecidedBy
	stored.RejectReason = report.RejectReason
	stored.UpdatedBy = report.UpdatedBy
	return nil
}

// ── mockOfferRepo ──

type mockOfferRepo struct {
	mu          sync.Mutex
	offers      map[string]*model.MarketOffer
	users       *mockUserRepo
	interestSeq int // 意向行自增序号，撤销后不复用
}

func newMockOfferRepo(users *mockUserRepo) *mockOfferRepo {
	return &mockOfferRepo{offers: make(map[string]*model.MarketOffer), users: users}
}

func (m *mockOfferRepo) Create(_ context.Context, offer *model.MarketOffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if offer.MarketOfferID == "" {
		offer.MarketOfferID = fmt.Sprintf("offer-%d", len(m.offers)+1)
	}
	cp := *offer
	m.offers[offer.MarketOfferID] = &cp
	return nil
}

func (m *mockOfferRepo) GetByID(ctx context.Context, id string) (*model.MarketOffer, error) {
	m.mu.Lock()
	o, ok := m.offers[id]
	if !ok {
		m.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	cp.Interests = append([]model.OfferInterest(nil), o.Interests...)
	m.mu.Unlock()

	for i := range cp.Interests {
		if teacher, err := m.users.GetByID(ctx, cp.Interests[i].TeacherID); err == nil {
			cp.Interests[i].Teacher = teacher
		}
	}
	return &cp, nil
}

func (m *mockOfferRepo) List(ctx context.Context, filter repository.OfferFilter) ([]model.MarketOffer, error) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.offers))
	for id := range m.offers {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var out []model.MarketOffer
	for _, id := range ids {
		o, err := m.GetByID(ctx, id)
		if err != nil {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.CreatedBy != "" && (o.CreatedBy == nil || *o.CreatedBy != filter.CreatedBy) {
			continue
		}
		if filter.TeacherID != "" && !o.HasInterest(filter.TeacherID) {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOfferRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, o := range m.offers {
		counts[o.Status]++
	}
	return counts, nil
}

func (m *mockOfferRepo) UpdateResolution(_ context.Context, offer *model.MarketOffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.offers[offer.MarketOfferID]
	if !ok || stored.Status != model.OfferStatusAvailable {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = offer.Status
	stored.AssignedTeacherID = offer.AssignedTeacherID
	stored.ResolvedAt = offer.ResolvedAt
	stored.UpdatedBy = offer.UpdatedBy
	return nil
}

func (m *mockOfferRepo) AddInterest(_ context.Context, interest *model.OfferInterest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.offers[interest.MarketOfferID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, it := range stored.Interests {
		if it.TeacherID == interest.TeacherID {
			return nil // ON CONFLICT DO NOTHING
		}
	}
	id := interest.OfferInterestID
	if id == "" {
		m.interestSeq++
		id = fmt.Sprintf("interest-%d", m.interestSeq)
	}
	stored.Interests = append(stored.Interests, model.OfferInterest{
		OfferInterestID: id,
		MarketOfferID:   interest.MarketOfferID,
		TeacherID:       interest.TeacherID,
		CreatedAt:       time.Now(),
	})
	return nil
}

func (m *mockOfferRepo) RemoveInterest(_ context.Context, offerID, teacherID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.offers[offerID]
	if !ok {
		return nil
	}
	kept := stored.Interests[:0]
	for _, it := range stored.Interests {
		if it.TeacherID != teacherID {
			kept = append(kept, it)
		}
	}
	stored.Interests = kept
	return nil
}

func (m *mockOfferRepo) ExpireBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var affected int64
	now := time.Now()
	for _, o := range m.offers {
		if o.Status == model.OfferStatusAvailable && o.StartDate.Before(cutoff) {
			o.Status = model.OfferStatusExpired
			o.ResolvedAt = &now
			affected++
		}
	}
	return affected, nil
}

// ── mockNotificationRepo ──

type mockNotificationRepo struct {
	mu      sync.Mutex
	records []model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) BatchCreate(_ context.Context, notifications []model.Notification) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var created []model.Notification
	for _, n := range notifications {
		dup := false
		for _, existing := range m.records {
			if existing.EventKey == n.EventKey && existing.UserID == n.UserID {
				dup = true
				break
			}
		}
		if dup {
			continue // 唯一约束冲突
		}
		n.NotificationID = fmt.Sprintf("notify-%d", len(m.records)+1)
		n.CreatedAt = time.Now()
		m.records = append(m.records, n)
		created = append(created, n)
	}
	return created, nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Notification
	for _, n := range m.records {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, notificationID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].NotificationID == notificationID && m.records[i].UserID == userID {
			m.records[i].IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.records {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// byUser 测试断言辅助：某用户收到的全部通知
func (m *mockNotificationRepo) byUser(userID string) []model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Notification
	for _, n := range m.records {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// ── mockSender ──

type sentMessage struct {
	RecipientID string
	TemplateKey string
}

type mockSender struct {
	mu   sync.Mutex
	sent []sentMessage
	fail bool // 为 true 时模拟外发通道故障
}

func (m *mockSender) Send(_ context.Context, recipientID, templateKey string, _ map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("通道不可用")
	}
	m.sent = append(m.sent, sentMessage{RecipientID: recipientID, TemplateKey: templateKey})
	return nil
}

// ── mockClaimer ──

type mockClaimer struct {
	mu      sync.Mutex
	claimed map[string]bool
	err     error // 非 nil 时模拟 Redis 故障
}

func newMockClaimer() *mockClaimer {
	return &mockClaimer{claimed: make(map[string]bool)}
}

func (m *mockClaimer) ClaimEvent(_ context.Context, eventKey string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.claimed[eventKey] {
		return false, nil
	}
	m.claimed[eventKey] = true
	return true, nil
}

// ── 测试环境装配 ──

type testEnv struct {
	repo          *repository.Repository
	users         *mockUserRepo
	students      *mockStudentRepo
	absences      *mockAbsenceRepo
	offers        *mockOfferRepo
	notifications *mockNotificationRepo
	sender        *mockSender
	claimer       *mockClaimer
}

func newTestEnv() *testEnv {
	users := newMockUserRepo()
	students := newMockStudentRepo()
	env := &testEnv{
		users:         users,
		students:      students,
		absences:      newMockAbsenceRepo(students, users),
		offers:        newMockOfferRepo(users),
		notifications: newMockNotificationRepo(),
		sender:        &mockSender{},
		claimer:       newMockClaimer(),
	}
	env.repo = &repository.Repository{
		User:          env.users,
		Student:       env.students,
		AbsenceReport: env.absences,
		MarketOffer:   env.offers,
		Notification:  env.notifications,
	}
	return env
}

// seedUser 便捷造数
func (e *testEnv) seedUser(id, name, role string) *model.User {
	u := &model.User{UserID: id, Name: name, Email: id + "@school.test", Role: role, IsActive: true}
	_ = e.users.Create(context.Background(), u)
	return u
}

func (e *testEnv) seedStudent(id, name, parentID string) *model.Student {
	s := &model.Student{StudentID: id, Name: name, ClassName: "CM2", ParentID: parentID}
	_ = e.students.Create(context.Background(), s)
	return s
}
