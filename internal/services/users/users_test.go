package users

import (
	"context"
	"net/http"
	"testing"

	"cineconsole/proj/internal/clients/cinema"
	"cineconsole/proj/internal/domain/filters"
	"cineconsole/proj/internal/domain/models"
	"cineconsole/proj/internal/lib/apperr"
	"cineconsole/proj/internal/lib/logger"
	"cineconsole/proj/internal/lib/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = &cinema.APIError{StatusCode: http.StatusInternalServerError, Body: "down"}

const allUsers = `{"content":[
	{"taiKhoan":"admin01","hoTen":"Nguyen Van A","email":"a@example.com","soDt":"0901234567","maLoaiNguoiDung":"QuanTri"},
	{"taiKhoan":"khach02","hoTen":"Tran Thi B","email":"b@example.com","soDT":"0907654321","maLoaiNguoiDung":"KhachHang"}
]}`

type fakeProvider struct {
	calls   map[string]int
	types   func() ([]byte, error)
	paged   func() ([]byte, error)
	detail  func(account string) ([]byte, error)
	added   []models.User
	updated []models.User
	deleted []string
}

func newFake() *fakeProvider {
	return &fakeProvider{
		calls: make(map[string]int),
		types: func() ([]byte, error) {
			return []byte(`{"content":[{"maLoaiNguoiDung":"KhachHang","tenLoai":"Khách hàng"},{"maLoaiNguoiDung":"QuanTri","tenLoai":"Quản trị"}]}`), nil
		},
		paged:  func() ([]byte, error) { return nil, errDown },
		detail: func(string) ([]byte, error) { return nil, errDown },
	}
}

func (f *fakeProvider) ListUserTypes(context.Context, string) ([]byte, error) {
	f.calls["types"]++
	return f.types()
}

func (f *fakeProvider) ListUsers(context.Context, string) ([]byte, error) {
	f.calls["list"]++
	return []byte(allUsers), nil
}

func (f *fakeProvider) ListUsersPaged(context.Context, string, int, int) ([]byte, error) {
	f.calls["paged"]++
	return f.paged()
}

func (f *fakeProvider) SearchUsersPaged(context.Context, string, string, int, int) ([]byte, error) {
	f.calls["search"]++
	return f.paged()
}

func (f *fakeProvider) GetUser(_ context.Context, account string) ([]byte, error) {
	f.calls["detail"]++
	return f.detail(account)
}

func (f *fakeProvider) AddUser(_ context.Context, user models.User) ([]byte, error) {
	f.added = append(f.added, user)
	return []byte(`{"content":{}}`), nil
}

func (f *fakeProvider) UpdateUser(_ context.Context, user models.User) ([]byte, error) {
	f.updated = append(f.updated, user)
	return []byte(`{"content":{}}`), nil
}

func (f *fakeProvider) DeleteUser(_ context.Context, account string) ([]byte, error) {
	if account == "ghost" {
		return nil, &cinema.APIError{StatusCode: http.StatusNotFound}
	}
	f.deleted = append(f.deleted, account)
	return []byte(`{}`), nil
}

func newService(p *fakeProvider) *UserService {
	return New(logger.Discard(), p, validator.New(), "GP01")
}

func validForm() models.UserForm {
	return models.UserForm{
		Account:  "khach03",
		Password: "secret123",
		FullName: "Le Van C",
		Email:    "c@example.com",
		Phone:    "0912345678",
		TypeID:   models.UserTypeCustomer,
	}
}

func TestGet(t *testing.T) {
	t.Run("scan fallback", func(t *testing.T) {
		p := newFake()
		user, err := newService(p).Get(context.Background(), "admin01")
		require.NoError(t, err)
		assert.Equal(t, "0901234567", user.Phone)
		assert.Equal(t, 1, p.calls["detail"])
	})
	t.Run("not found", func(t *testing.T) {
		_, err := newService(newFake()).Get(context.Background(), "nobody")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestList(t *testing.T) {
	t.Run("search uses search endpoint", func(t *testing.T) {
		p := newFake()
		p.paged = func() ([]byte, error) {
			return []byte(`{"content":{"totalCount":1,"items":[{"taiKhoan":"khach02"}]}}`), nil
		}
		users, meta, err := newService(p).List(context.Background(), filters.Filters{Query: "khach"})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, 1, meta.TotalRecords)
		assert.Equal(t, 1, p.calls["search"])
		assert.Equal(t, 0, p.calls["paged"])
	})
	t.Run("local filter when paged endpoints fail", func(t *testing.T) {
		p := newFake()
		users, meta, err := newService(p).List(context.Background(), filters.Filters{Query: "tran"})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "khach02", users[0].Account)
		assert.Equal(t, 1, meta.TotalRecords)
	})
}

func TestCreate(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		p := newFake()
		user, err := newService(p).Create(context.Background(), validForm())
		require.NoError(t, err)
		require.Len(t, p.added, 1)
		assert.Equal(t, "GP01", p.added[0].GroupCode)
		assert.Equal(t, "secret123", p.added[0].Password)
		assert.Empty(t, user.Password)
	})
	t.Run("account taken", func(t *testing.T) {
		p := newFake()
		form := validForm()
		form.Account = "admin01"
		_, err := newService(p).Create(context.Background(), form)
		assert.ErrorIs(t, err, ErrAccountTaken)
		assert.Empty(t, p.added)
	})
	t.Run("invalid", func(t *testing.T) {
		p := newFake()
		form := validForm()
		form.Email = "not-an-email"
		form.Phone = "12ab"
		form.TypeID = "Root"
		_, err := newService(p).Create(context.Background(), form)
		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "email")
		assert.Contains(t, verr.Fields, "soDT")
		assert.Contains(t, verr.Fields, "maLoaiNguoiDung")
		assert.Empty(t, p.added)
	})
	t.Run("known types when listing fails", func(t *testing.T) {
		p := newFake()
		p.types = func() ([]byte, error) { return nil, errDown }
		_, err := newService(p).Create(context.Background(), validForm())
		require.NoError(t, err)
	})
}

func TestUpdate(t *testing.T) {
	p := newFake()
	form := validForm()
	form.Account = ""
	_, err := newService(p).Update(context.Background(), "khach02", form)
	require.NoError(t, err)
	require.Len(t, p.updated, 1)
	assert.Equal(t, "khach02", p.updated[0].Account)

	form.Account = "renamed"
	_, err = newService(p).Update(context.Background(), "khach02", form)
	assert.ErrorIs(t, err, ErrAccountMismatch)
}

func TestBulkDelete(t *testing.T) {
	p := newFake()
	res := newService(p).BulkDelete(context.Background(), []string{"admin01", "ghost", "khach02"})
	assert.Equal(t, []string{"admin01", "khach02"}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	assert.ErrorIs(t, res.Failed[0].Error, ErrUserNotFound)
	assert.Equal(t, []string{"admin01", "khach02"}, p.deleted)
}
