package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/model"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/queue"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/repository"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/utils"
)

var phonePattern = regexp.MustCompile(`^\+?[\d\s\-\(\)]{7,15}$`)

const (
	maxNameLen     = 100
	maxPhoneLen    = 13
	maxUsernameLen = 50
	maxPasswordLen = 10
)

// CreateUserInput is the sign-up payload.
type CreateUserInput struct {
	FirstName *string `json:"nombre"`
	LastName  *string `json:"apellidos"`
	Phone     *string `json:"telefono"`
	Role      *string `json:"tipo_usuario"`
	Username  *string `json:"nombre_usuario"`
	Password  *string `json:"clave"`
}

// UpdateUserInput is a partial profile update.  Role changes are not
// accepted through this path.
type UpdateUserInput struct {
	FirstName *string `json:"nombre"`
	LastName  *string `json:"apellidos"`
	Phone     *string `json:"telefono"`
	Username  *string `json:"nombre_usuario"`
	Password  *string `json:"clave"`
}

// Users manages accounts and credentials.
type Users struct{ d Deps }

func NewUsers(d Deps) *Users { return &Users{d: d} }

// Create validates and stores a new account with a bcrypt-hashed password.
func (s *Users) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	const op = "users.create"
	firstName, err := requiredText(op, in.FirstName, "El nombre", maxNameLen)
	if err != nil {
		return nil, err
	}
	lastName, err := requiredText(op, in.LastName, "Los apellidos", maxNameLen)
	if err != nil {
		return nil, err
	}
	if in.Phone == nil || strings.TrimSpace(*in.Phone) == "" {
		return nil, invalid(op, "El teléfono es obligatorio")
	}
	phone := strings.TrimSpace(*in.Phone)
	if err := validatePhone(op, phone); err != nil {
		return nil, err
	}
	if in.Role == nil || strings.TrimSpace(*in.Role) == "" {
		return nil, invalid(op, "El tipo de usuario es obligatorio")
	}
	role := strings.TrimSpace(*in.Role)
	if !model.ValidRole(role) {
		return nil, invalid(op, "El tipo de usuario debe ser Administrador o Cliente")
	}
	username, err := requiredText(op, in.Username, "El nombre de usuario", maxUsernameLen)
	if err != nil {
		return nil, err
	}
	if _, err := s.d.Users.GetByUsername(ctx, username); err == nil {
		return nil, conflict(op, "Ya existe un usuario con ese nombre de usuario", nil)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, internal(op, err)
	}
	if in.Password == nil || *in.Password == "" {
		return nil, invalid(op, "La clave es obligatoria")
	}
	if utf8.RuneCountInString(*in.Password) > maxPasswordLen {
		return nil, invalid(op, "La clave no puede exceder 10 caracteres")
	}
	hash, err := utils.HashPassword(*in.Password, s.d.BcryptCost)
	if err != nil {
		return nil, internal(op, err)
	}

	u := &model.User{
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		Role:         role,
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.d.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict(op, "Ya existe un usuario con ese nombre de usuario", err)
		}
		return nil, internal(op, err)
	}
	return u, nil
}

func (s *Users) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.d.Users.GetByID(ctx, id)
	return u, fromRepo("users.get", err)
}

func (s *Users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.d.Users.GetByUsername(ctx, username)
	return u, fromRepo("users.get_by_username", err)
}

func (s *Users) List(ctx context.Context, p model.Page) ([]model.User, error) {
	list, err := s.d.Users.List(ctx, p)
	return list, fromRepo("users.list", err)
}

// ListAdmins returns every Administrador account.
func (s *Users) ListAdmins(ctx context.Context) ([]model.User, error) {
	list, err := s.d.Users.ListByRole(ctx, model.RoleAdmin)
	return list, fromRepo("users.list_admins", err)
}

// ListClients returns every Cliente account.
func (s *Users) ListClients(ctx context.Context) ([]model.User, error) {
	list, err := s.d.Users.ListByRole(ctx, model.RoleClient)
	return list, fromRepo("users.list_clients", err)
}

// Update applies the supplied fields after validating each of them.
func (s *Users) Update(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*model.User, error) {
	const op = "users.update"
	u, err := s.d.Users.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(op, err)
	}
	if in.FirstName != nil {
		if u.FirstName, err = requiredText(op, in.FirstName, "El nombre", maxNameLen); err != nil {
			return nil, err
		}
	}
	if in.LastName != nil {
		if u.LastName, err = requiredText(op, in.LastName, "Los apellidos", maxNameLen); err != nil {
			return nil, err
		}
	}
	if in.Phone != nil && strings.TrimSpace(*in.Phone) != "" {
		phone := strings.TrimSpace(*in.Phone)
		if err := validatePhone(op, phone); err != nil {
			return nil, err
		}
		u.Phone = phone
	}
	if in.Username != nil {
		username, err := requiredText(op, in.Username, "El nombre de usuario", maxUsernameLen)
		if err != nil {
			return nil, err
		}
		other, err := s.d.Users.GetByUsername(ctx, username)
		switch {
		case err == nil && other.ID != u.ID:
			return nil, conflict(op, "Ya existe un usuario con ese nombre", nil)
		case err != nil && !errors.Is(err, repository.ErrUserNotFound):
			return nil, internal(op, err)
		}
		u.Username = username
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, invalid(op, "La clave no puede estar vacía")
		}
		if utf8.RuneCountInString(*in.Password) > maxPasswordLen {
			return nil, invalid(op, "La clave no puede exceder 10 caracteres")
		}
		hash, err := utils.HashPassword(*in.Password, s.d.BcryptCost)
		if err != nil {
			return nil, internal(op, err)
		}
		u.PasswordHash = hash
	}
	if err := s.d.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict(op, "Ya existe un usuario con ese nombre", err)
		}
		return nil, fromRepo(op, err)
	}
	return u, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *Users) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	const op = "users.change_password"
	u, err := s.d.Users.GetByID(ctx, id)
	if err != nil {
		return fromRepo(op, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, current) {
		return invalid(op, "La clave actual es incorrecta")
	}
	if next == "" {
		return invalid(op, "La nueva clave es obligatoria")
	}
	if utf8.RuneCountInString(next) > maxPasswordLen {
		return invalid(op, "La nueva clave no puede exceder 10 caracteres")
	}
	if next == current {
		return invalid(op, "La nueva clave debe ser diferente a la actual")
	}
	hash, err := utils.HashPassword(next, s.d.BcryptCost)
	if err != nil {
		return internal(op, err)
	}
	u.PasswordHash = hash
	return fromRepo(op, s.d.Users.Update(ctx, u))
}

// Authenticate checks a username/password pair.  Unknown users and wrong
// passwords produce the same unauthorized error.
func (s *Users) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	const op = "users.authenticate"
	bad := &Error{Op: op, Kind: KindUnauthorized, Msg: "Credenciales inválidas"}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalid(op, "nombre_usuario y clave son obligatorios")
	}
	u, err := s.d.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, bad
		}
		return nil, internal(op, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, bad
	}
	return u, nil
}

// Delete removes a user together with their reservations and refresh
// tokens.  Active reservations release their rooms; catalog rows the user
// authored are handed over to the system account.
func (s *Users) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "users.delete"
	if id == model.SystemUserID {
		return &Error{Op: op, Kind: KindForbidden, Msg: "El usuario del sistema no puede eliminarse"}
	}
	var removed []model.Reservation
	err := withTx(ctx, s.d.DB, func(tx *sql.Tx) error {
		if _, err := s.d.Users.GetByIDTx(ctx, tx, id); err != nil {
			return err
		}
		list, err := s.d.Reservations.ListByUserTx(ctx, tx, id)
		if err != nil {
			return err
		}
		for i := range list {
			if err := deleteReservationTx(ctx, tx, s.d, &list[i]); err != nil {
				return err
			}
		}
		removed = list
		if err := s.d.Tokens.DeleteForUserTx(ctx, tx, id); err != nil {
			return err
		}
		if err := s.d.Users.ReassignAuthorshipTx(ctx, tx, id, model.SystemUserID); err != nil {
			return err
		}
		return s.d.Users.DeleteTx(ctx, tx, id)
	})
	if err != nil {
		return fromRepo(op, err)
	}
	for i := range removed {
		publish(ctx, s.d, reservationEvent(queue.EventReservationDeleted, &removed[i]))
	}
	s.d.Logger.Info("user.deleted", slog.String("id_usuario", id.String()), slog.Int("reservas", len(removed)))
	return nil
}

// requiredText trims *v and enforces presence and a maximum rune length.
func requiredText(op string, v *string, label string, max int) (string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", invalid(op, label+" es obligatorio")
	}
	s := strings.TrimSpace(*v)
	if max > 0 && utf8.RuneCountInString(s) > max {
		return "", invalid(op, label+" excede la longitud máxima permitida")
	}
	return s, nil
}

func validatePhone(op, phone string) error {
	if !phonePattern.MatchString(phone) {
		return invalid(op, "El teléfono solo puede contener números, espacios, guiones, paréntesis y un '+' inicial (7 a 15 caracteres)")
	}
	if utf8.RuneCountInString(phone) > maxPhoneLen {
		return invalid(op, "El teléfono no puede exceder 13 caracteres")
	}
	return nil
}
