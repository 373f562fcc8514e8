package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"cineconsole/proj/internal/domain/filters"
	"cineconsole/proj/internal/domain/models"
	"cineconsole/proj/internal/lib/apperr"
	"cineconsole/proj/internal/lib/batch"
	"cineconsole/proj/internal/lib/dispatch"
	"cineconsole/proj/internal/lib/envelope"
	"cineconsole/proj/internal/lib/validator"

	govalidator "github.com/go-playground/validator/v10"
)

type UsersProvider interface {
	ListUserTypes(ctx context.Context, group string) ([]byte, error)
	ListUsers(ctx context.Context, group string) ([]byte, error)
	ListUsersPaged(ctx context.Context, group string, page, pageSize int) ([]byte, error)
	SearchUsersPaged(ctx context.Context, group, keyword string, page, pageSize int) ([]byte, error)
	GetUser(ctx context.Context, account string) ([]byte, error)
	AddUser(ctx context.Context, user models.User) ([]byte, error)
	UpdateUser(ctx context.Context, user models.User) ([]byte, error)
	DeleteUser(ctx context.Context, account string) ([]byte, error)
}

// defaultUserTypes is used when the backend's user type list is unavailable.
var defaultUserTypes = []models.UserType{
	{ID: models.UserTypeCustomer, Name: "Khách hàng"},
	{ID: models.UserTypeAdmin, Name: "Quản trị"},
}

type UserService struct {
	log       *slog.Logger
	provider  UsersProvider
	validator *govalidator.Validate
	groupCode string
}

func New(log *slog.Logger, provider UsersProvider, validator *govalidator.Validate, groupCode string) *UserService {
	return &UserService{
		log:       log,
		provider:  provider,
		validator: validator,
		groupCode: groupCode,
	}
}

func (s *UserService) Types(ctx context.Context) ([]models.UserType, error) {
	const op = "users.UserService.Types"
	log := s.log.With("op", op)
	raw, err := s.provider.ListUserTypes(ctx, s.groupCode)
	if err != nil {
		log.Error(err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return envelope.DecodeList[models.UserType](raw)
}

type page struct {
	users []models.User
	total int
}

func (s *UserService) List(ctx context.Context, f filters.Filters) ([]models.User, filters.Metadata, error) {
	const op = "users.UserService.List"
	f = f.WithDefaults()
	log := s.log.With("op", op, "page", f.Page, "page_size", f.PageSize, "q", f.Query)
	res, err := dispatch.Run(ctx, log, op,
		dispatch.New("paged listing", func(ctx context.Context) (page, error) {
			var (
				raw []byte
				err error
			)
			if f.Query != "" {
				raw, err = s.provider.SearchUsersPaged(ctx, s.groupCode, f.Query, f.Page, f.PageSize)
			} else {
				raw, err = s.provider.ListUsersPaged(ctx, s.groupCode, f.Page, f.PageSize)
			}
			if err != nil {
				return page{}, err
			}
			items, total := envelope.Page(raw)
			users, err := envelope.DecodeItems[models.User](items)
			return page{users: users, total: total}, err
		}),
		dispatch.New("full listing", func(ctx context.Context) (page, error) {
			all, err := s.listAll(ctx)
			if err != nil {
				return page{}, err
			}
			matched := filterUsers(all, f.Query)
			return page{users: paginate(matched, f), total: len(matched)}, nil
		}),
	)
	if err != nil {
		log.Error(err.Error())
		return nil, filters.Metadata{}, fmt.Errorf("%s: %w", op, err)
	}
	return res.users, filters.CalculateMetadata(res.total, f), nil
}

func (s *UserService) listAll(ctx context.Context) ([]models.User, error) {
	raw, err := s.provider.ListUsers(ctx, s.groupCode)
	if err != nil {
		return nil, err
	}
	return envelope.DecodeList[models.User](raw)
}

func (s *UserService) Get(ctx context.Context, account string) (*models.User, error) {
	const op = "users.UserService.Get"
	log := s.log.With("op", op, "account", account)
	user, err := dispatch.Run(ctx, log, op,
		dispatch.New("user detail", func(ctx context.Context) (models.User, error) {
			raw, err := s.provider.GetUser(ctx, account)
			if err != nil {
				return models.User{}, err
			}
			return envelope.DecodeRecord[models.User](raw)
		}),
		dispatch.New("user scan", func(ctx context.Context) (models.User, error) {
			all, err := s.listAll(ctx)
			if err != nil {
				return models.User{}, err
			}
			for _, u := range all {
				if u.Account == account {
					return u, nil
				}
			}
			return models.User{}, apperr.ErrNotFound
		}),
	)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Info("user not found")
			return nil, ErrUserNotFound
		}
		log.Error(err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

func (s *UserService) AccountAvailable(ctx context.Context, account string) (bool, error) {
	_, err := s.Get(ctx, account)
	if errors.Is(err, ErrUserNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

func (s *UserService) validate(ctx context.Context, form models.UserForm) error {
	errs := validator.ValidateStruct(s.validator, form)
	if errs == nil {
		errs = make(map[string]string)
	}
	if _, failed := errs["maLoaiNguoiDung"]; !failed {
		types, err := s.Types(ctx)
		if err != nil || len(types) == 0 {
			types = defaultUserTypes
		}
		known := slices.ContainsFunc(types, func(t models.UserType) bool { return t.ID == form.TypeID })
		if !known {
			errs["maLoaiNguoiDung"] = "Unknown user type"
		}
	}
	if len(errs) > 0 {
		return &apperr.ValidationError{Fields: errs}
	}
	return nil
}

func (s *UserService) Create(ctx context.Context, form models.UserForm) (*models.User, error) {
	const op = "users.UserService.Create"
	if form.GroupCode == "" {
		form.GroupCode = s.groupCode
	}
	log := s.log.With("op", op, "account", form.Account)
	if err := s.validate(ctx, form); err != nil {
		log.Info("invalid user form", "errMsg", err.Error())
		return nil, err
	}
	available, err := s.AccountAvailable(ctx, form.Account)
	if err != nil {
		log.Warn("account availability check skipped", "errMsg", err.Error())
	} else if !available {
		log.Info("account already taken")
		return nil, ErrAccountTaken
	}
	user := form.User()
	if _, err := s.provider.AddUser(ctx, user); err != nil {
		log.Error(err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.Password = ""
	return &user, nil
}

// Update replaces the profile of account. The account name itself is immutable.
func (s *UserService) Update(ctx context.Context, account string, form models.UserForm) (*models.User, error) {
	const op = "users.UserService.Update"
	log := s.log.With("op", op, "account", account)
	if form.Account == "" {
		form.Account = account
	}
	if form.Account != account {
		return nil, ErrAccountMismatch
	}
	if form.GroupCode == "" {
		form.GroupCode = s.groupCode
	}
	if err := s.validate(ctx, form); err != nil {
		log.Info("invalid user form", "errMsg", err.Error())
		return nil, err
	}
	user := form.User()
	if _, err := s.provider.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Info("user not found")
			return nil, ErrUserNotFound
		}
		log.Error(err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.Password = ""
	return &user, nil
}

func (s *UserService) Delete(ctx context.Context, account string) error {
	const op = "users.UserService.Delete"
	log := s.log.With("op", op, "account", account)
	if _, err := s.provider.DeleteUser(ctx, account); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Info("user not found")
			return ErrUserNotFound
		}
		log.Error(err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *UserService) BulkDelete(ctx context.Context, accounts []string) batch.Result {
	return batch.Apply(ctx, accounts, s.Delete)
}

func filterUsers(users []models.User, query string) []models.User {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return users
	}
	out := []models.User{}
	for _, u := range users {
		for _, field := range []string{u.Account, u.FullName, u.Email, u.Phone} {
			if strings.Contains(strings.ToLower(field), query) {
				out = append(out, u)
				break
			}
		}
	}
	return out
}

func paginate(users []models.User, f filters.Filters) []models.User {
	offset := f.Offset()
	if offset >= len(users) {
		return []models.User{}
	}
	return users[offset:min(offset+f.PageSize, len(users))]
}
