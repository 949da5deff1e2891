package service

import "github.com/cognimock/cognimock/internal/model"

// stdStringConstraints matches the emulated service's bounds for the
// standard string claims.
var stdStringConstraints = model.StringConstraints{MinLength: "0", MaxLength: "2048"}

// stdSchemaNames lists the standard string claims every pool carries besides
// sub. All are optional and mutable.
var stdSchemaNames = []string{
	"name", "given_name", "family_name", "middle_name", "nickname",
	"preferred_username", "profile", "picture", "website", "email",
	"gender", "birthdate", "zoneinfo", "locale", "phone_number",
	"address", "updated_at",
}

// defaultSchema returns a fresh copy of the built-in schema attributes.
// Never hand out or mutate a shared slice: merged schemas are computed into
// new values per call so concurrent pool creations cannot contaminate each
// other.
func defaultSchema() []model.SchemaAttribute {
	attrs := []model.SchemaAttribute{{
		Name:                       "sub",
		AttributeDataType:          "String",
		Mutable:                    false,
		Required:                   true,
		StringAttributeConstraints: &model.StringConstraints{MinLength: "1", MaxLength: "2048"},
	}}
	for _, name := range stdSchemaNames {
		switch name {
		case "updated_at":
			attrs = append(attrs, model.SchemaAttribute{
				Name:                       name,
				AttributeDataType:          "Number",
				Mutable:                    true,
				NumberAttributeConstraints: &model.NumberConstraints{MinValue: "0"},
			})
		default:
			c := stdStringConstraints
			attrs = append(attrs, model.SchemaAttribute{
				Name:                       name,
				AttributeDataType:          "String",
				Mutable:                    true,
				StringAttributeConstraints: &c,
			})
		}
	}
	attrs = append(attrs,
		model.SchemaAttribute{Name: "email_verified", AttributeDataType: "Boolean", Mutable: true},
		model.SchemaAttribute{Name: "phone_number_verified", AttributeDataType: "Boolean", Mutable: true},
	)
	return attrs
}

// builtinDefaults returns the service-level defaults observed on a freshly
// created pool. A fresh value per call; callers may mutate the result.
func builtinDefaults() model.UserPool {
	return model.UserPool{
		Policies: &model.Policies{
			PasswordPolicy: &model.PasswordPolicy{
				MinimumLength:                 8,
				RequireUppercase:              true,
				RequireLowercase:              true,
				RequireNumbers:                true,
				RequireSymbols:                true,
				TemporaryPasswordValidityDays: 7,
			},
		},
		SchemaAttributes: defaultSchema(),
		MFAConfiguration: "OFF",
		AdminCreateUserConfig: &model.AdminCreateUserConfig{
			AllowAdminCreateUserOnly:  false,
			UnusedAccountValidityDays: 7,
		},
		EmailConfiguration: &model.EmailConfiguration{EmailSendingAccount: "COGNITO_DEFAULT"},
	}
}

// mergeSchemaAttributes appends every built-in attribute whose name the
// caller did not supply. A caller-supplied definition is never overwritten.
func mergeSchemaAttributes(requested []model.SchemaAttribute) []model.SchemaAttribute {
	merged := make([]model.SchemaAttribute, len(requested))
	copy(merged, requested)

	have := make(map[string]struct{}, len(requested))
	for _, a := range requested {
		have[a.Name] = struct{}{}
	}
	for _, def := range defaultSchema() {
		if _, ok := have[def.Name]; !ok {
			merged = append(merged, def)
		}
	}
	return merged
}

// overlayPool layers over on top of base, field by field at the top level.
// Unset fields of over (zero values) keep base's value; nothing is merged
// recursively.
func overlayPool(base, over model.UserPool) model.UserPool {
	out := base
	if over.ID != "" {
		out.ID = over.ID
	}
	if over.Name != "" {
		out.Name = over.Name
	}
	if over.SchemaAttributes != nil {
		out.SchemaAttributes = over.SchemaAttributes
	}
	if over.UsernameAttributes != nil {
		out.UsernameAttributes = over.UsernameAttributes
	}
	if over.AutoVerifiedAttributes != nil {
		out.AutoVerifiedAttributes = over.AutoVerifiedAttributes
	}
	if over.MFAConfiguration != "" {
		out.MFAConfiguration = over.MFAConfiguration
	}
	if over.Policies != nil {
		out.Policies = over.Policies
	}
	if over.AdminCreateUserConfig != nil {
		out.AdminCreateUserConfig = over.AdminCreateUserConfig
	}
	if over.EmailConfiguration != nil {
		out.EmailConfiguration = over.EmailConfiguration
	}
	if over.EstimatedNumberOfUsers != 0 {
		out.EstimatedNumberOfUsers = over.EstimatedNumberOfUsers
	}
	if !over.CreationDate.IsZero() {
		out.CreationDate = over.CreationDate
	}
	if !over.LastModifiedDate.IsZero() {
		out.LastModifiedDate = over.LastModifiedDate
	}
	return out
}
