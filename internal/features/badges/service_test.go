package badges

import (
	"context"
	"testing"

	"citizen-bot/internal/common"
	"citizen-bot/internal/features/users"
)

// --- Фейки ---

type fakeCatalog struct {
	badges []*Badge
	// (user_id, badge_id) → выдан
	held map[[2]int64]bool
}

func newFakeCatalog(badges ...*Badge) *fakeCatalog {
	return &fakeCatalog{badges: badges, held: make(map[[2]int64]bool)}
}

func (f *fakeCatalog) Upsert(_ context.Context, b *Badge) error {
	for _, existing := range f.badges {
		if existing.Name == b.Name {
			return nil
		}
	}
	b.ID = int64(len(f.badges) + 1)
	f.badges = append(f.badges, b)
	return nil
}

func (f *fakeCatalog) GetByName(_ context.Context, name string) (*Badge, error) {
	for _, b := range f.badges {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, common.ErrBadgeNotFound
}

func (f *fakeCatalog) ListActive(_ context.Context) ([]*Badge, error) {
	var out []*Badge
	for _, b := range f.badges {
		if b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeCatalog) HeldBadgeIDs(_ context.Context, userID int64) (map[int64]bool, error) {
	out := make(map[int64]bool)
	for key := range f.held {
		if key[0] == userID {
			out[key[1]] = true
		}
	}
	return out, nil
}

func (f *fakeCatalog) Award(_ context.Context, userID, badgeID int64) (bool, error) {
	key := [2]int64{userID, badgeID}
	if f.held[key] {
		return false, nil
	}
	f.held[key] = true
	return true, nil
}

func (f *fakeCatalog) RefreshAward(_ context.Context, userID, badgeID int64) error {
	f.held[[2]int64{userID, badgeID}] = true
	return nil
}

func (f *fakeCatalog) UserBadges(_ context.Context, _ int64) ([]*EarnedBadge, error) {
	return nil, nil
}

func (f *fakeCatalog) Create(_ context.Context, b *Badge) error {
	b.ID = int64(len(f.badges) + 1)
	f.badges = append(f.badges, b)
	return nil
}

type fakeDirectory struct {
	users map[int64]*users.User
}

func (f *fakeDirectory) GetByUserID(_ context.Context, userID int64) (*users.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return u, nil
}

func mustEncode(t *testing.T, req Requirement) string {
	t.Helper()
	raw, err := req.Encode()
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

// --- Тесты ---

func TestCheckAndAwardBadges(t *testing.T) {
	catalog := newFakeCatalog(
		&Badge{ID: 1, Name: "First Steps", IsActive: true,
			Requirement: mustEncode(t, Requirement{Type: ReqMessages, Threshold: 1})},
		&Badge{ID: 2, Name: "Chatterbox", IsActive: true,
			Requirement: mustEncode(t, Requirement{Type: ReqMessages, Threshold: 100})},
	)
	dir := &fakeDirectory{users: map[int64]*users.User{
		1: {UserID: 1, MessagesCount: 5},
	}}

	svc := NewService(catalog, dir)

	awarded, err := svc.CheckAndAwardBadges(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(awarded) != 1 || awarded[0] != "First Steps" {
		t.Fatalf("выдано %v, ожидался только First Steps", awarded)
	}

	// Повторная проверка ничего не выдаёт
	awarded, err = svc.CheckAndAwardBadges(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(awarded) != 0 {
		t.Errorf("повторная проверка выдала %v", awarded)
	}
}

func TestCheckAndAwardBadgesUnknownUser(t *testing.T) {
	svc := NewService(newFakeCatalog(), &fakeDirectory{users: map[int64]*users.User{}})

	awarded, err := svc.CheckAndAwardBadges(context.Background(), 404)
	if err != nil {
		t.Fatal(err)
	}
	if awarded != nil {
		t.Errorf("для незнакомого участника выдано %v", awarded)
	}
}

// Кривое правило в каталоге не роняет проверку остальных бейджей.
func TestCheckAndAwardBadgesMalformedRule(t *testing.T) {
	catalog := newFakeCatalog(
		&Badge{ID: 1, Name: "Broken", IsActive: true, Requirement: `не json`},
		&Badge{ID: 2, Name: "First Steps", IsActive: true,
			Requirement: mustEncode(t, Requirement{Type: ReqMessages, Threshold: 1})},
	)
	dir := &fakeDirectory{users: map[int64]*users.User{
		1: {UserID: 1, MessagesCount: 5},
	}}

	svc := NewService(catalog, dir)

	awarded, err := svc.CheckAndAwardBadges(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(awarded) != 1 || awarded[0] != "First Steps" {
		t.Fatalf("выдано %v, ожидался First Steps несмотря на кривое правило", awarded)
	}
}

func TestAwardByName(t *testing.T) {
	catalog := newFakeCatalog(
		&Badge{ID: 1, Name: "Citizen of the Month", IsActive: true,
			Requirement: mustEncode(t, Requirement{Type: ReqCustom, Condition: CondMonthlyTop})},
	)
	svc := NewService(catalog, &fakeDirectory{users: map[int64]*users.User{}})

	created, err := svc.AwardByName(context.Background(), 1, "Citizen of the Month", 99)
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("первая выдача должна создать запись")
	}

	created, err = svc.AwardByName(context.Background(), 1, "Citizen of the Month", 99)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("повторная выдача не создаёт запись")
	}

	if _, err := svc.AwardByName(context.Background(), 1, "Несуществующий", 99); err == nil {
		t.Error("выдача несуществующего бейджа должна вернуть ошибку")
	}
}

func TestInitializeDefaultBadges(t *testing.T) {
	catalog := newFakeCatalog()
	svc := NewService(catalog, &fakeDirectory{users: map[int64]*users.User{}})

	if err := svc.InitializeDefaultBadges(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(catalog.badges) != 8 {
		t.Fatalf("в каталоге %d бейджей, ожидалось 8", len(catalog.badges))
	}

	// Повторный бутстрап идемпотентен
	if err := svc.InitializeDefaultBadges(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(catalog.badges) != 8 {
		t.Fatalf("после повторного бутстрапа %d бейджей", len(catalog.badges))
	}

	// Все правила стандартного каталога читаемы
	for _, b := range catalog.badges {
		if _, err := ParseRequirement(b.Requirement); err != nil {
			t.Errorf("правило бейджа %q не парсится: %v", b.Name, err)
		}
	}
}
