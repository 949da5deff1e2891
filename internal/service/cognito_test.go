package service

import (
	"context"
	"regexp"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cognimock/cognimock/internal/config"
	"github.com/cognimock/cognimock/internal/errs"
	"github.com/cognimock/cognimock/internal/model"
	"github.com/cognimock/cognimock/internal/store"
)

func newTestRegistry(t *testing.T, cfg config.Config) *CognitoServiceImpl {
	t.Helper()
	ctx := context.Background()

	if cfg.DataDir == "" {
		cfg.DataDir = t.TempDir()
	}
	if cfg.Region == "" {
		cfg.Region = "local"
	}
	stores := store.NewFileFactory(cfg.DataDir, zap.NewNop(), nil)
	pools := NewUserPoolServiceFactory(fixedClock{t: testNow}, stores, zap.NewNop())

	svc, err := NewCognitoService(ctx, cfg, stores, pools, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func schemaByName(attrs []model.SchemaAttribute) map[string]model.SchemaAttribute {
	m := make(map[string]model.SchemaAttribute, len(attrs))
	for _, a := range attrs {
		m[a.Name] = a
	}
	return m
}

func TestCreateUserPool_DefaultsSchemaAttributes(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t, config.Config{})

	cfg, err := reg.CreateUserPool(ctx, model.UserPool{ID: "local"})
	require.NoError(t, err)

	byName := schemaByName(cfg.SchemaAttributes)
	for _, def := range defaultSchema() {
		require.Contains(t, byName, def.Name)
	}

	sub := byName["sub"]
	require.True(t, sub.Required)
	require.False(t, sub.Mutable)
}

func TestCreateUserPool_CallerSchemaWinsOverDefault(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t, config.Config{})

	custom := model.SchemaAttribute{
		Name:              "email",
		AttributeDataType: "String",
		Mutable:           false,
		Required:          true,
	}
	cfg, err := reg.CreateUserPool(ctx, model.UserPool{
		ID:               "local",
		SchemaAttributes: []model.SchemaAttribute{custom},
	})
	require.NoError(t, err)

	var emails []model.SchemaAttribute
	for _, a := range cfg.SchemaAttributes {
		if a.Name == "email" {
			emails = append(emails, a)
		}
	}
	require.Len(t, emails, 1)
	require.Equal(t, custom, emails[0])

	// caller's attribute first, defaults appended after
	require.Equal(t, "email", cfg.SchemaAttributes[0].Name)
}

func TestCreateUserPool_LayersDeploymentDefaults(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t, config.Config{
		UserPoolDefaults: model.UserPool{
			MFAConfiguration:   "OPTIONAL",
			UsernameAttributes: []string{"email"},
		},
	})

	// deployment defaults apply where the caller is silent
	cfg, err := reg.CreateUserPool(ctx, model.UserPool{ID: "a"})
	require.NoError(t, err)
	require.Equal(t, "OPTIONAL", cfg.MFAConfiguration)
	require.Equal(t, []string{"email"}, cfg.UsernameAttributes)

	// and the caller overrides them field by field
	cfg, err = reg.CreateUserPool(ctx, model.UserPool{
		ID:                 "b",
		MFAConfiguration:   "ON",
		UsernameAttributes: []string{"phone_number"},
	})
	require.NoError(t, err)
	require.Equal(t, "ON", cfg.MFAConfiguration)
	require.Equal(t, []string{"phone_number"}, cfg.UsernameAttributes)
}

func TestCreateUserPool_BuiltinDefaults(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t, config.Config{})

	cfg, err := reg.CreateUserPool(ctx, model.UserPool{ID: "local"})
	require.NoError(t, err)

	require.Equal(t, "OFF", cfg.MFAConfiguration)
	require.NotNil(t, cfg.Policies)
	require.NotNil(t, cfg.Policies.PasswordPolicy)
	require.Equal(t, 8, cfg.Policies.PasswordPolicy.MinimumLength)
	require.NotNil(t, cfg.AdminCreateUserConfig)
	require.Equal(t, "COGNITO_DEFAULT", cfg.EmailConfiguration.EmailSendingAccount)
}

func TestCreateUserPool_GeneratesIDWhenAbsent(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t, config.Config{Region: "local"})

	cfg, err := reg.CreateUserPool(ctx, model.UserPool{})
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^local_[a-z0-9]{9}$`), cfg.ID)
}

func TestGetUserPool_Idempotent(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t, config.Config{})

	created, err := reg.CreateUserPool(ctx, model.UserPool{
		ID:                 "local",
		UsernameAttributes: []string{"email"},
	})
	require.NoError(t, err)

	first, err := reg.GetUserPool(ctx, "local")
	require.NoError(t, err)
	second, err := reg.GetUserPool(ctx, "local")
	require.NoError(t, err)

	require.Equal(t, *created, first.Config())
	require.Equal(t, first.Config(), second.Config())
}

// A rehydrated pool reports its stored options, not the defaults in force at
// reopen time.
func TestGetUserPool_StoredOptionsWin(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	reg := newTestRegistry(t, config.Config{DataDir: dir})
	_, err := reg.CreateUserPool(ctx, model.UserPool{ID: "local", MFAConfiguration: "ON"})
	require.NoError(t, err)

	// a second registry with different deployment defaults over the same dir
	reg2 := newTestRegistry(t, config.Config{
		DataDir:          dir,
		UserPoolDefaults: model.UserPool{MFAConfiguration: "OPTIONAL"},
	})
	svc, err := reg2.GetUserPool(ctx, "local")
	require.NoError(t, err)
	require.Equal(t, "ON", svc.Config().MFAConfiguration)
}

func TestGetAppClient_AbsentIsNil(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t, config.Config{})

	c, err := reg.GetAppClient(ctx, "no-such-client")
	require.NoError(t, err)
	require.Nil(t, c)
}

func TestGetUserPoolForClientID(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t, config.Config{})

	_, err := reg.GetUserPoolForClientID(ctx, "no-such-client")
	require.ErrorIs(t, err, errs.ErrNotFound)

	created, err := reg.CreateUserPool(ctx, model.UserPool{ID: "local"})
	require.NoError(t, err)
	pool, err := reg.GetUserPool(ctx, created.ID)
	require.NoError(t, err)
	client, err := pool.CreateAppClient(ctx, "my-app")
	require.NoError(t, err)

	got, err := reg.GetAppClient(ctx, client.ClientID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, client.ClientID, got.ClientID)

	owner, err := reg.GetUserPoolForClientID(ctx, client.ClientID)
	require.NoError(t, err)
	require.Equal(t, "local", owner.Config().ID)
}

func TestListUserPools_ExcludesClientsDataset(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t, config.Config{})

	_, err := reg.CreateUserPool(ctx, model.UserPool{ID: "local"})
	require.NoError(t, err)
	_, err = reg.CreateUserPool(ctx, model.UserPool{ID: "other"})
	require.NoError(t, err)

	// make sure clients.json holds data and still never shows up
	pool, err := reg.GetUserPool(ctx, "local")
	require.NoError(t, err)
	_, err = pool.CreateAppClient(ctx, "my-app")
	require.NoError(t, err)

	pools, err := reg.ListUserPools(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 2)

	ids := []string{pools[0].ID, pools[1].ID}
	sort.Strings(ids)
	require.Equal(t, []string{"local", "other"}, ids)
}

func TestListUserPools_EmptyDirectory(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t, config.Config{})

	pools, err := reg.ListUserPools(ctx)
	require.NoError(t, err)
	require.Empty(t, pools)
}

func TestDeleteUserPool(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t, config.Config{})

	_, err := reg.CreateUserPool(ctx, model.UserPool{ID: "local"})
	require.NoError(t, err)
	_, err = reg.CreateUserPool(ctx, model.UserPool{ID: "other"})
	require.NoError(t, err)

	require.NoError(t, reg.DeleteUserPool(ctx, "local"))

	pools, err := reg.ListUserPools(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 1)
	require.Equal(t, "other", pools[0].ID)

	// absent pools are a no-op, the clients dataset is protected
	require.NoError(t, reg.DeleteUserPool(ctx, "local"))
	require.Error(t, reg.DeleteUserPool(ctx, "clients"))
}
