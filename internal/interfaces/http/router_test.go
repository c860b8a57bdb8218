package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agrotrack-api/internal/application/analytics"
	"github.com/jhoicas/agrotrack-api/internal/application/auth"
	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/application/inventory"
	"github.com/jhoicas/agrotrack-api/internal/application/ports"
	"github.com/jhoicas/agrotrack-api/internal/application/report"
	"github.com/jhoicas/agrotrack-api/internal/application/telemetry"
	"github.com/jhoicas/agrotrack-api/internal/application/usecase"
	"github.com/jhoicas/agrotrack-api/internal/domain/entity"
	"github.com/jhoicas/agrotrack-api/internal/infrastructure/redis"
	apphttp "github.com/jhoicas/agrotrack-api/internal/interfaces/http"
	"github.com/jhoicas/agrotrack-api/internal/testutil/memrepo"
	pkgjwt "github.com/jhoicas/agrotrack-api/pkg/jwt"
	"github.com/jhoicas/agrotrack-api/pkg/logger"
)

type noopMailer struct{}

func (noopMailer) SendPasswordReset(context.Context, string, string, string) error { return nil }

type apiFixture struct {
	app         *fiber.App
	store       *memrepo.Store
	adminRole   *entity.Role
	learnerRole *entity.Role
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	store := memrepo.New()

	admin := &entity.Role{ID: uuid.NewString(), Name: entity.RoleAdmin}
	learner := &entity.Role{ID: uuid.NewString(), Name: "aprendiz"}
	require.NoError(t, store.Roles().Create(ctx, admin))
	require.NoError(t, store.Roles().Create(ctx, learner))
	view := &entity.Permission{ID: uuid.NewString(), Resource: "lotes", Action: "ver"}
	require.NoError(t, store.Permissions().Create(ctx, view))
	require.NoError(t, store.Roles().SetPermissions(ctx, learner.ID, []string{view.ID}))

	authz := usecase.NewAuthorizationService(store.Roles(), nil, nil)
	authUC := auth.NewAuthUseCase(store.Users(), store.Roles(), store.Resets(), store.TxRunner(), authz, noopMailer{}, auth.Config{
		Secret:      testJWTSecret,
		ExpMinutes:  testExpMin,
		Issuer:      testIssuer,
		DefaultRole: "aprendiz",
		ResetURL:    "http://localhost/restablecer",
	}, nil)

	alertUC := usecase.NewAlertUseCase(store.Alerts(), nil, nil)
	telemetrySvc := telemetry.NewService(store.Sensors(), 10, alertUC, nil, nil)
	summaryUC := analytics.NewFinanceSummaryUseCase(store.Finance(), store.Movements())

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:        authUC,
		Authz:         authz,
		UserUC:        usecase.NewUserUseCase(store.Users(), store.Roles()),
		RoleUC:        usecase.NewRoleUseCase(store.Roles(), store.Permissions(), authz),
		ParcelUC:      usecase.NewParcelUseCase(store.Lots(), store.Sublots()),
		CropUC:        usecase.NewCropUseCase(store.Crops(), store.Sublots()),
		SupplyUC:      usecase.NewSupplyUseCase(store.Supplies()),
		StockUC:       inventory.NewStockUseCase(store.Items(), store.Supplies()),
		MovementUC:    inventory.NewMovementUseCase(store.TxRunner(), store.Supplies(), store.Movements(), store.Items(), alertUC),
		TreatmentUC:   inventory.NewTreatmentUseCase(store.TxRunner(), store.Crops(), store.Treatments(), store.Supplies(), alertUC),
		SensorUC:      usecase.NewSensorUseCase(store.Sensors(), store.Lots(), telemetrySvc),
		AlertUC:       alertUC,
		Ingester:      telemetrySvc,
		FinanceUC:     usecase.NewFinanceUseCase(store.Finance(), store.Crops()),
		SummaryUC:     summaryUC,
		ReportUC:      report.NewUseCase(store.Items(), store.Movements(), store.Sensors(), telemetrySvc, summaryUC, map[string]ports.ReportRenderer{}),
		LoginLimiter:  redis.NewRateLimiter(nil, "rl", 3, time.Minute, logger.Nop()),
		JWTSecret:     testJWTSecret,
		UploadDir:     t.TempDir(),
		UploadMaxSize: 1 << 20,
	})
	return &apiFixture{app: app, store: store, adminRole: admin, learnerRole: learner}
}

func (f *apiFixture) token(t *testing.T, role *entity.Role) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, uuid.NewString(), role.ID, role.Name, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (f *apiFixture) do(t *testing.T, method, path, auth string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if auth != "" {
		req.Header.Set(fiber.HeaderAuthorization, auth)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func registerBody(email string) dto.RegisterRequest {
	return dto.RegisterRequest{
		FirstName:      "Luisa",
		LastName:       "Gómez",
		Email:          email,
		Password:       "secreta123",
		DocumentType:   "CC",
		DocumentNumber: "1020304050",
	}
}

func TestAuth_RegistroYLogin(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodPost, "/api/auth/register", "", registerBody("luisa@finca.co"))
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("credenciales válidas", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "luisa@finca.co", Password: "secreta123"})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out dto.LoginResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.NotEmpty(t, out.AccessToken)
		assert.Equal(t, f.learnerRole.ID, out.User.RoleID)
	})

	t.Run("password incorrecto", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "luisa@finca.co", Password: "otra-clave"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuth_RegistroInvalidoDevuelveCampos(t *testing.T) {
	f := newAPI(t)
	body := registerBody("no-es-email")
	body.Password = "corta"

	resp := f.do(t, http.MethodPost, "/api/auth/register", "", body)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := decodeError(t, resp)
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Equal(t, "email", out.Fields["email"])
	assert.Equal(t, "min", out.Fields["password"])
}

func TestAuth_LoginLimitadoPorIP(t *testing.T) {
	f := newAPI(t)
	creds := dto.LoginRequest{Email: "nadie@finca.co", Password: "secreta123"}

	for i := 0; i < 3; i++ {
		resp := f.do(t, http.MethodPost, "/api/auth/login", "", creds)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "intento %d", i+1)
	}

	resp := f.do(t, http.MethodPost, "/api/auth/login", "", creds)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, "3", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "RATE_LIMITED", decodeError(t, resp).Code)
}

func TestUsuarios_CrearSoloAdministrador(t *testing.T) {
	f := newAPI(t)
	body := dto.CreateUserRequest{RegisterRequest: registerBody("nuevo@finca.co"), RoleID: f.learnerRole.ID}

	resp := f.do(t, http.MethodPost, "/api/usuarios", f.token(t, f.learnerRole), body)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/usuarios", f.token(t, f.adminRole), body)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestPermisos_RolSinPermisoRecibe403(t *testing.T) {
	f := newAPI(t)
	learner := f.token(t, f.learnerRole)

	resp := f.do(t, http.MethodGet, "/api/lotes", learner, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "lotes:ver asignado")

	resp = f.do(t, http.MethodPost, "/api/lotes", learner, dto.LotRequest{Name: "Lote 1"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRutasProtegidas_SinToken(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodGet, "/api/cultivos", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", decodeError(t, resp).Code)
}

func TestCultivos_EliminarInexistente(t *testing.T) {
	f := newAPI(t)
	admin := f.token(t, f.adminRole)

	resp := f.do(t, http.MethodDelete, "/api/cultivos/"+uuid.NewString(), admin, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Code)

	resp2 := f.do(t, http.MethodDelete, "/api/cultivos/no-es-uuid", admin, nil)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestLotes_Coordenadas(t *testing.T) {
	f := newAPI(t)
	admin := f.token(t, f.adminRole)

	resp := f.do(t, http.MethodPost, "/api/lotes", admin, dto.LotRequest{Name: "La Esperanza"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var lot dto.LotResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lot))

	t.Run("polígono vacío", func(t *testing.T) {
		resp := f.do(t, http.MethodPut, "/api/lotes/"+lot.ID+"/coordenadas", admin, dto.CoordinatesRequest{Coordinates: []entity.Point{}})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_GEOMETRY", decodeError(t, resp).Code)
	})

	t.Run("polígono válido", func(t *testing.T) {
		square := []entity.Point{
			{Lat: 4.60, Lng: -74.08},
			{Lat: 4.60, Lng: -74.07},
			{Lat: 4.61, Lng: -74.07},
			{Lat: 4.61, Lng: -74.08},
		}
		resp := f.do(t, http.MethodPut, "/api/lotes/"+lot.ID+"/coordenadas", admin, dto.CoordinatesRequest{Coordinates: square})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out dto.LotResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.True(t, out.AreaM2.IsPositive())
	})

	t.Run("mapa no choca con /:id", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/lotes/mapa", admin, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestSensores_IngestaHTTPPayloadInvalido(t *testing.T) {
	f := newAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/sensores/lecturas", bytes.NewBufferString("no es json"))
	req.Header.Set(fiber.HeaderAuthorization, f.token(t, f.adminRole))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUsuarios_CambioDeRolRequiereAdministrador(t *testing.T) {
	f := newAPI(t)
	ctx := context.Background()

	supervisor := &entity.Role{ID: uuid.NewString(), Name: "supervisor"}
	require.NoError(t, f.store.Roles().Create(ctx, supervisor))
	edit := &entity.Permission{ID: uuid.NewString(), Resource: "usuarios", Action: "editar"}
	require.NoError(t, f.store.Permissions().Create(ctx, edit))
	require.NoError(t, f.store.Roles().SetPermissions(ctx, supervisor.ID, []string{edit.ID}))

	user := &entity.User{
		ID: uuid.NewString(), FirstName: "Marta", Email: "marta@finca.co",
		DocumentType: "CC", DocumentNumber: "55443322",
		RoleID: supervisor.ID, RoleName: supervisor.Name, Status: entity.UserStatusActive,
	}
	require.NoError(t, f.store.Users().Create(ctx, user))
	tok, err := pkgjwt.Generate(testJWTSecret, user.ID, supervisor.ID, supervisor.Name, testIssuer, testExpMin)
	require.NoError(t, err)

	adminID := f.adminRole.ID
	resp := f.do(t, http.MethodPut, "/api/usuarios/"+user.ID, "Bearer "+tok, dto.UpdateUserRequest{RoleID: &adminID})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Code)

	stored, err := f.store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, supervisor.ID, stored.RoleID)

	name := "Marta Lucía"
	resp2 := f.do(t, http.MethodPut, "/api/usuarios/"+user.ID, "Bearer "+tok, dto.UpdateUserRequest{FirstName: &name})
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode, "editar sin tocar el rol sigue permitido")

	resp3 := f.do(t, http.MethodPut, "/api/usuarios/"+user.ID, f.token(t, f.adminRole), dto.UpdateUserRequest{RoleID: &adminID})
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusOK, resp3.StatusCode)
}
