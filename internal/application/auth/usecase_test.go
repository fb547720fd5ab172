package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario/internal/application/auth"
	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/pkg/jwt"
)

type fakeUserRepo struct {
	users map[string]*entity.User // por email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(user *entity.User) error {
	if _, ok := r.users[user.Email]; ok {
		return domain.ErrEmailAlreadyExists
	}
	cp := *user
	r.users[user.Email] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*entity.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

var testJWT = auth.JWTConfig{Secret: "secreto-de-prueba", ExpMinutes: 60, Issuer: "pos-inventario"}

func TestRegisterUser_YLogin(t *testing.T) {
	repo := newFakeUserRepo()
	uc := auth.NewAuthUseCase(repo, testJWT)

	user, err := uc.RegisterUser(dto.RegisterRequest{
		Email:    "bodega@tienda.co",
		Password: "clave-segura-1",
		Name:     "Bodeguero Uno",
		Role:     entity.RoleBodeguero,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleBodeguero, user.Role)
	assert.Equal(t, "active", user.Status)

	// El hash nunca sale en la respuesta y no es el password en claro.
	stored := repo.users["bodega@tienda.co"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "clave-segura-1", stored.PasswordHash)

	resp, err := uc.Login(dto.LoginRequest{Email: "bodega@tienda.co", Password: "clave-segura-1"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	userID, role, err := jwt.Parse(testJWT.Secret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, entity.RoleBodeguero, role)
}

func TestRegisterUser_EmailDuplicado(t *testing.T) {
	uc := auth.NewAuthUseCase(newFakeUserRepo(), testJWT)

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "caja@tienda.co", Password: "clave-segura-1"})
	require.NoError(t, err)

	_, err = uc.RegisterUser(dto.RegisterRequest{Email: "caja@tienda.co", Password: "otra-clave-99"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterUser_RolPorDefecto(t *testing.T) {
	uc := auth.NewAuthUseCase(newFakeUserRepo(), testJWT)

	user, err := uc.RegisterUser(dto.RegisterRequest{Email: "caja@tienda.co", Password: "clave-segura-1"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleVendedor, user.Role)
}

func TestLogin_Errores(t *testing.T) {
	repo := newFakeUserRepo()
	uc := auth.NewAuthUseCase(repo, testJWT)

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "caja@tienda.co", Password: "clave-segura-1"})
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "nadie@tienda.co", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = uc.Login(dto.LoginRequest{Email: "caja@tienda.co", Password: "clave-equivocada"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	repo.users["caja@tienda.co"].Status = "disabled"
	_, err = uc.Login(dto.LoginRequest{Email: "caja@tienda.co", Password: "clave-segura-1"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
