package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cognimock/cognimock/internal/model"
)

// The default templates must hand out fresh values: one caller mutating its
// merged result can never leak into another pool's defaults.
func TestDefaultsAreNotShared(t *testing.T) {
	first := builtinDefaults()
	first.MFAConfiguration = "ON"
	first.Policies.PasswordPolicy.MinimumLength = 99
	first.SchemaAttributes[0].Required = false

	second := builtinDefaults()
	require.Equal(t, "OFF", second.MFAConfiguration)
	require.Equal(t, 8, second.Policies.PasswordPolicy.MinimumLength)
	require.True(t, second.SchemaAttributes[0].Required)
}

func TestMergeSchemaAttributes_DoesNotMutateInput(t *testing.T) {
	requested := []model.SchemaAttribute{{Name: "email", Required: true}}

	merged := mergeSchemaAttributes(requested)
	require.Len(t, requested, 1)
	require.Greater(t, len(merged), 1)

	// run again from the same input: same result, still no mutation
	again := mergeSchemaAttributes(requested)
	require.Equal(t, merged, again)
}

func TestOverlayPool_ZeroFieldsKeepBase(t *testing.T) {
	base := builtinDefaults()
	base.ID = "base"
	base.UsernameAttributes = []string{"email"}

	out := overlayPool(base, model.UserPool{MFAConfiguration: "ON"})
	require.Equal(t, "base", out.ID)
	require.Equal(t, []string{"email"}, out.UsernameAttributes)
	require.Equal(t, "ON", out.MFAConfiguration)
	require.Equal(t, base.Policies, out.Policies)
}

func TestOverlayPool_EmptySliceOverridesBase(t *testing.T) {
	base := builtinDefaults()
	base.UsernameAttributes = []string{"email"}

	// nil means unset, but an explicit empty slice is an override
	out := overlayPool(base, model.UserPool{UsernameAttributes: []string{}})
	require.Empty(t, out.UsernameAttributes)
	require.NotNil(t, out.UsernameAttributes)
}
