package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vegmart/models"
	"vegmart/payments"
	"vegmart/repositories"
	"vegmart/storage"
)

var errBoom = errors.New("boom")

type fakeUsers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.User
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[primitive.ObjectID]*models.User{}}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repositories.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) with(id primitive.ObjectID, fn func(u *models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(u)
	return nil
}

func (f *fakeUsers) SetVerified(_ context.Context, id primitive.ObjectID) error {
	return f.with(id, func(u *models.User) { u.IsVerified = true })
}

func (f *fakeUsers) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	return f.with(id, func(u *models.User) { u.Password = hash })
}

func (f *fakeUsers) RefreshPending(_ context.Context, id primitive.ObjectID, name, hash string) error {
	return f.with(id, func(u *models.User) { u.Name, u.Password = name, hash })
}

func (f *fakeUsers) LinkGoogle(_ context.Context, id primitive.ObjectID, googleID string, dropPassword bool) error {
	return f.with(id, func(u *models.User) {
		u.GoogleID, u.IsVerified = googleID, true
		if dropPassword {
			u.Password = ""
		}
	})
}

func (f *fakeUsers) PromoteCustomer(_ context.Context, id primitive.ObjectID, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok || u.Role != models.RoleCustomer {
		return repositories.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUsers) SetBlocked(_ context.Context, id primitive.ObjectID, blocked bool) error {
	return f.with(id, func(u *models.User) { u.IsBlocked = blocked })
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id primitive.ObjectID, patch models.ProfilePatch) (*models.User, error) {
	var out models.User
	err := f.with(id, func(u *models.User) {
		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.Phone != nil {
			u.Phone = *patch.Phone
		}
		if patch.ProfileImage != nil {
			img := *patch.ProfileImage
			u.ProfileImage = &img
		}
		out = *u
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *fakeUsers) List(_ context.Context, role string, _, _ int) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	for _, u := range f.byID {
		if role == "" || u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) AddAddress(_ context.Context, userID primitive.ObjectID, addr models.Address) error {
	return f.with(userID, func(u *models.User) { u.Addresses = append(u.Addresses, addr) })
}

func (f *fakeUsers) UpdateAddress(_ context.Context, userID primitive.ObjectID, addr models.Address) error {
	found := false
	err := f.with(userID, func(u *models.User) {
		for i := range u.Addresses {
			if u.Addresses[i].ID == addr.ID {
				u.Addresses[i] = addr
				found = true
			}
		}
	})
	if err == nil && !found {
		return repositories.ErrNotFound
	}
	return err
}

func (f *fakeUsers) DeleteAddress(_ context.Context, userID, addressID primitive.ObjectID) error {
	found := false
	err := f.with(userID, func(u *models.User) {
		kept := u.Addresses[:0]
		for _, a := range u.Addresses {
			if a.ID == addressID {
				found = true
				continue
			}
			kept = append(kept, a)
		}
		u.Addresses = kept
	})
	if err == nil && !found {
		return repositories.ErrNotFound
	}
	return err
}

type fakeProducts struct {
	mu         sync.Mutex
	byID       map[primitive.ObjectID]*models.Product
	failCreate error
	failUpdate error
	updates    int
}

func newFakeProducts(products ...*models.Product) *fakeProducts {
	f := &fakeProducts{byID: map[primitive.ObjectID]*models.Product{}}
	for _, p := range products {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakeProducts) Create(_ context.Context, p *models.Product) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = primitive.NewObjectID()
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProducts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	cp.Images = append([]models.Image(nil), p.Images...)
	return &cp, nil
}

func (f *fakeProducts) List(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for _, p := range f.byID {
		if filter.RetailerID != nil && p.RetailerID != *filter.RetailerID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProducts) Update(_ context.Context, id primitive.ObjectID, patch models.ProductPatch, images []models.Image) (*models.Product, error) {
	if f.failUpdate != nil {
		return nil, f.failUpdate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	f.updates++
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	p.Images = images
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeStore records uploads and deletions by storage id
type fakeStore struct {
	mu         sync.Mutex
	failUpload map[string]bool
	failDelete map[string]bool
	uploaded   []string
	deleted    []string
}

func (f *fakeStore) Upload(_ context.Context, file storage.File, folder string) (models.Image, error) {
	if f.failUpload[file.Name] {
		return models.Image{}, errBoom
	}
	id := folder + "/" + file.Name
	f.mu.Lock()
	f.uploaded = append(f.uploaded, id)
	f.mu.Unlock()
	return models.Image{URL: "https://cdn.test/" + id, StorageID: id}, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if f.failDelete[id] {
		return errBoom
	}
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	return nil
}

type fakeOTPs struct {
	mu   sync.Mutex
	rows map[string]models.OTP
}

func newFakeOTPs() *fakeOTPs { return &fakeOTPs{rows: map[string]models.OTP{}} }

func (f *fakeOTPs) Upsert(_ context.Context, email, code string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[email] = models.OTP{Email: email, Code: code, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeOTPs) FindByEmail(_ context.Context, email string) (*models.OTP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.rows[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &o, nil
}

func (f *fakeOTPs) DeleteByEmail(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, email)
	return nil
}

type sentOTP struct {
	to, code string
	reset    bool
}

type fakeMailer struct {
	sent []sentOTP
	err  error
}

func (f *fakeMailer) SendOTP(_ context.Context, to, code string, _ time.Duration, reset bool) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentOTP{to: to, code: code, reset: reset})
	return nil
}

func (f *fakeMailer) last() sentOTP { return f.sent[len(f.sent)-1] }

type fakePayments struct {
	mu       sync.Mutex
	byIntent map[string]*models.Payment
	failSave error
}

func newFakePayments() *fakePayments {
	return &fakePayments{byIntent: map[string]*models.Payment{}}
}

func (f *fakePayments) Create(_ context.Context, p *models.Payment) error {
	if f.failSave != nil {
		return f.failSave
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = primitive.NewObjectID()
	cp := *p
	f.byIntent[p.PaymentIntentID] = &cp
	return nil
}

func (f *fakePayments) UpdateStatusByIntent(_ context.Context, intentID, status string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byIntent[intentID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	p.Status = status
	cp := *p
	return &cp, nil
}

func (f *fakePayments) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Payment{}
	for _, p := range f.byIntent {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeGateway struct {
	intent    payments.Intent
	createErr error
	event     payments.Event
	parseErr  error
	amounts   []int64
}

func (f *fakeGateway) CreateIntent(_ context.Context, amount int64, _ string, _ map[string]string) (payments.Intent, error) {
	f.amounts = append(f.amounts, amount)
	if f.createErr != nil {
		return payments.Intent{}, f.createErr
	}
	return f.intent, nil
}

func (f *fakeGateway) ParseWebhook(_ []byte, _ string) (payments.Event, error) {
	return f.event, f.parseErr
}

type fakeRetailers struct {
	rows       map[primitive.ObjectID]*models.Retailer
	failCreate error
	deleted    []primitive.ObjectID
	// approveAll answers FindByUserID with an approved shop for any user
	approveAll bool
}

func newFakeRetailers() *fakeRetailers {
	return &fakeRetailers{rows: map[primitive.ObjectID]*models.Retailer{}}
}

func approvedShops() *fakeRetailers {
	f := newFakeRetailers()
	f.approveAll = true
	return f
}

func (f *fakeRetailers) Create(_ context.Context, r *models.Retailer) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	for _, existing := range f.rows {
		if existing.UserID == r.UserID {
			return repositories.ErrDuplicate
		}
	}
	r.ID = primitive.NewObjectID()
	f.rows[r.ID] = r
	return nil
}

func (f *fakeRetailers) FindByUserID(_ context.Context, userID primitive.ObjectID) (*models.Retailer, error) {
	for _, r := range f.rows {
		if r.UserID == userID {
			return r, nil
		}
	}
	if f.approveAll {
		return &models.Retailer{ID: primitive.NewObjectID(), UserID: userID, Status: models.OnboardingApproved}, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeRetailers) SetStatus(_ context.Context, id primitive.ObjectID, status string) error {
	r, ok := f.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	r.Status = status
	return nil
}

func (f *fakeRetailers) Delete(_ context.Context, id primitive.ObjectID) error {
	f.deleted = append(f.deleted, id)
	delete(f.rows, id)
	return nil
}

type fakeCouriers struct {
	rows       map[primitive.ObjectID]*models.DeliveryBoy
	failCreate error
}

func newFakeCouriers() *fakeCouriers {
	return &fakeCouriers{rows: map[primitive.ObjectID]*models.DeliveryBoy{}}
}

func (f *fakeCouriers) Create(_ context.Context, d *models.DeliveryBoy) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	d.ID = primitive.NewObjectID()
	f.rows[d.ID] = d
	return nil
}

func (f *fakeCouriers) FindByUserID(_ context.Context, userID primitive.ObjectID) (*models.DeliveryBoy, error) {
	for _, d := range f.rows {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCouriers) SetStatus(_ context.Context, id primitive.ObjectID, status string) error {
	d, ok := f.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	d.Status = status
	return nil
}

func (f *fakeCouriers) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(f.rows, id)
	return nil
}
