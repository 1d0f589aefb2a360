package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meinhoongagan/bookify/models"
	"github.com/meinhoongagan/bookify/search"
	"github.com/meinhoongagan/bookify/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements store.Store on PostgreSQL. Appointments live in the
// appointments table with a per-user copy in user_appointments.
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreateUser(ctx context.Context, u *models.User, p *models.ServiceProvider) error {
	return mapErr(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		if u.Role == "" {
			u.Role = models.RoleUser
		}
		if err := u.Validate(); err != nil {
			return err
		}
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		if p == nil {
			return nil
		}
		p.ID = u.ID
		if err := p.Validate(); err != nil {
			return err
		}
		return tx.Create(p).Error
	}), "user "+u.Email)
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, mapErr(err, "user "+id.String())
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error; err != nil {
		return nil, mapErr(err, "user "+email)
	}
	return &u, nil
}

func (s *Store) SaveProvider(ctx context.Context, p *models.ServiceProvider) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return mapErr(s.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error, "provider "+p.ID.String())
}

func (s *Store) GetProvider(ctx context.Context, id uuid.UUID) (*models.ServiceProvider, error) {
	var p models.ServiceProvider
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, mapErr(err, "provider "+id.String())
	}
	return &p, nil
}

func (s *Store) providerQuery(ctx context.Context, f search.ProviderFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.ServiceProvider{})
	if f.Category != "" {
		q = q.Where("service_category = ?", f.Category)
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		q = q.Where("address ILIKE ?", likePattern(loc))
	}
	if text := strings.TrimSpace(f.Query); text != "" {
		pattern := likePattern(text)
		q = q.Where("(business_name ILIKE ? OR full_name ILIKE ? OR service_category ILIKE ?)", pattern, pattern, pattern)
	}
	return q
}

func (s *Store) ListProviders(ctx context.Context, f search.ProviderFilter) ([]models.ServiceProvider, int64, error) {
	var total int64
	if err := s.providerQuery(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := paginate(s.providerQuery(ctx, f).Order("LOWER(business_name) ASC, id ASC"), f.Page, f.Limit)
	var out []models.ServiceProvider
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) DeleteProvider(ctx context.Context, id uuid.UUID) error {
	return mapErr(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.ServiceProvider{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("provider_id = ?", id).Delete(&models.Service{}).Error; err != nil {
			return err
		}
		if err := tx.Where("provider_id = ?", id).Delete(&models.GalleryImage{}).Error; err != nil {
			return err
		}
		// A missing user row is fine.
		return tx.Delete(&models.User{}, "id = ?", id).Error
	}), "provider "+id.String())
}

func (s *Store) requireProvider(tx *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := tx.Model(&models.ServiceProvider{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: provider %s", store.ErrNotFound, id)
	}
	return nil
}

func (s *Store) CreateService(ctx context.Context, svc *models.Service) error {
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	if err := svc.Validate(); err != nil {
		return err
	}
	return mapErr(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireProvider(tx, svc.ProviderID); err != nil {
			return err
		}
		return tx.Create(svc).Error
	}), "service "+svc.ID.String())
}

func (s *Store) UpdateService(ctx context.Context, svc *models.Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	return mapErr(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Service
		if err := tx.First(&existing, "id = ? AND provider_id = ?", svc.ID, svc.ProviderID).Error; err != nil {
			return err
		}
		svc.CreatedAt = existing.CreatedAt
		return tx.Save(svc).Error
	}), "service "+svc.ID.String())
}

func (s *Store) DeleteService(ctx context.Context, providerID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Service{}, "id = ? AND provider_id = ?", id, providerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: service %s", store.ErrNotFound, id)
	}
	return nil
}

func (s *Store) ListServices(ctx context.Context, providerID uuid.UUID) ([]models.Service, error) {
	var out []models.Service
	err := s.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (s *Store) AddGalleryImage(ctx context.Context, g *models.GalleryImage) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if err := g.Validate(); err != nil {
		return err
	}
	return mapErr(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireProvider(tx, g.ProviderID); err != nil {
			return err
		}
		return tx.Create(g).Error
	}), "gallery image "+g.ID.String())
}

func (s *Store) ListGalleryImages(ctx context.Context, providerID uuid.UUID) ([]models.GalleryImage, error) {
	var out []models.GalleryImage
	err := s.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (s *Store) DeleteGalleryImage(ctx context.Context, providerID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.GalleryImage{}, "id = ? AND provider_id = ?", id, providerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: gallery image %s", store.ErrNotFound, id)
	}
	return nil
}

func (s *Store) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return mapErr(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserAppointment{Appointment: *a}).Error
	}), "appointment "+a.ID.String())
}

func (s *Store) GetAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var a models.Appointment
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, mapErr(err, "appointment "+id.String())
	}
	return &a, nil
}

// filterAppointments applies f to a query over either appointment table.
func filterAppointments(q *gorm.DB, f search.AppointmentFilter) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.ProviderID != uuid.Nil {
		q = q.Where("provider_id = ?", f.ProviderID)
	}
	if f.UserID != uuid.Nil {
		q = q.Where("user_id = ?", f.UserID)
	}
	if !f.From.IsZero() {
		q = q.Where("date >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("date < ?", f.To)
	}
	if text := strings.TrimSpace(f.Query); text != "" {
		pattern := likePattern(text)
		q = q.Where(`(user_name ILIKE ? OR provider_name ILIKE ?
			OR EXISTS (SELECT 1 FROM jsonb_array_elements(services) AS s WHERE s->>'name' ILIKE ?))`,
			pattern, pattern, pattern)
	}
	return q
}

func orderAppointments(q *gorm.DB, f search.AppointmentFilter) *gorm.DB {
	if f.Descending {
		return q.Order("date DESC, created_at ASC")
	}
	return q.Order("date ASC, created_at ASC")
}

func (s *Store) ListAppointments(ctx context.Context, f search.AppointmentFilter) ([]models.Appointment, int64, error) {
	base := func() *gorm.DB {
		return filterAppointments(s.db.WithContext(ctx).Model(&models.Appointment{}), f)
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Appointment
	if err := paginate(orderAppointments(base(), f), f.Page, f.Limit).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) ListUserAppointments(ctx context.Context, userID uuid.UUID, f search.AppointmentFilter) ([]models.Appointment, int64, error) {
	f.UserID = userID
	base := func() *gorm.DB {
		return filterAppointments(s.db.WithContext(ctx).Model(&models.UserAppointment{}), f)
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.UserAppointment
	if err := paginate(orderAppointments(base(), f), f.Page, f.Limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]models.Appointment, len(rows))
	for i := range rows {
		out[i] = rows[i].Appointment
	}
	return out, total, nil
}

func (s *Store) ListProviderAppointments(ctx context.Context, providerID uuid.UUID, from, to time.Time) ([]models.Appointment, error) {
	out, _, err := s.ListAppointments(ctx, search.AppointmentFilter{ProviderID: providerID, From: from, To: to})
	return out, err
}

func (s *Store) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, to models.AppointmentStatus) (*models.Appointment, error) {
	var a models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, "id = ?", id).Error; err != nil {
			return err
		}
		if err := a.Status.CanTransition(to); err != nil {
			return err
		}
		changes := map[string]interface{}{"status": string(to), "updated_at": time.Now()}
		if err := tx.Model(&models.Appointment{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return err
		}
		a.Status = to
		a.UpdatedAt = changes["updated_at"].(time.Time)
		res := tx.Model(&models.UserAppointment{}).Where("id = ?", id).Updates(changes)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Restore a lost per-user copy.
			return tx.Create(&models.UserAppointment{Appointment: a}).Error
		}
		return nil
	})
	if err != nil {
		return nil, mapErr(err, "appointment "+id.String())
	}
	return &a, nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	return mapErr(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Appointment{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		// The per-user copy may already be gone.
		return tx.Delete(&models.UserAppointment{}, "id = ?", id).Error
	}), "appointment "+id.String())
}

func (s *Store) HasConflict(ctx context.Context, providerID uuid.UUID, start, end time.Time) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("provider_id = ? AND status <> ? AND date < ? AND ends_at > ?",
			providerID, string(models.StatusCancelled), end, start).
		Count(&n).Error
	return n > 0, err
}

func paginate(q *gorm.DB, page, limit int) *gorm.DB {
	if limit <= 0 {
		return q
	}
	offset, limit := search.Offset(page, limit)
	return q.Offset(offset).Limit(limit)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns user text into a substring pattern for ILIKE.
func likePattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

func mapErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", store.ErrNotFound, what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s", store.ErrConflict, what)
	}
	return err
}
