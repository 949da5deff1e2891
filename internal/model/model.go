// Package model defines domain entities used by services and the store.
package model

import "time"

// AttributeType is a single name/value user attribute. Users carry an ordered
// list of these rather than a fixed schema, mirroring the emulated service.
type AttributeType struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// AttributeListType is an ordered list of user attributes.
type AttributeListType []AttributeType

// StringConstraints bounds a string-typed schema attribute.
type StringConstraints struct {
	MinLength string `json:"MinLength,omitempty"`
	MaxLength string `json:"MaxLength,omitempty"`
}

// NumberConstraints bounds a number-typed schema attribute.
type NumberConstraints struct {
	MinValue string `json:"MinValue,omitempty"`
	MaxValue string `json:"MaxValue,omitempty"`
}

// SchemaAttribute describes one attribute slot of a pool's schema.
type SchemaAttribute struct {
	Name                       string             `json:"Name"`
	AttributeDataType          string             `json:"AttributeDataType,omitempty"`
	DeveloperOnlyAttribute     bool               `json:"DeveloperOnlyAttribute"`
	Mutable                    bool               `json:"Mutable"`
	Required                   bool               `json:"Required"`
	StringAttributeConstraints *StringConstraints `json:"StringAttributeConstraints,omitempty"`
	NumberAttributeConstraints *NumberConstraints `json:"NumberAttributeConstraints,omitempty"`
}

// PasswordPolicy holds a pool's password requirements.
type PasswordPolicy struct {
	MinimumLength                 int  `json:"MinimumLength,omitempty"`
	RequireUppercase              bool `json:"RequireUppercase"`
	RequireLowercase              bool `json:"RequireLowercase"`
	RequireNumbers                bool `json:"RequireNumbers"`
	RequireSymbols                bool `json:"RequireSymbols"`
	TemporaryPasswordValidityDays int  `json:"TemporaryPasswordValidityDays,omitempty"`
}

// Policies wraps the pool-level policy block.
type Policies struct {
	PasswordPolicy *PasswordPolicy `json:"PasswordPolicy,omitempty"`
}

// AdminCreateUserConfig controls administrative user creation.
type AdminCreateUserConfig struct {
	AllowAdminCreateUserOnly  bool `json:"AllowAdminCreateUserOnly"`
	UnusedAccountValidityDays int  `json:"UnusedAccountValidityDays,omitempty"`
}

// EmailConfiguration selects the outbound email account for a pool.
type EmailConfiguration struct {
	EmailSendingAccount string `json:"EmailSendingAccount,omitempty"`
}

// UserPool is one pool's merged options and schema. JSON field names follow
// the emulated service's wire casing since the on-disk layout is shared with
// clients that assert against it.
type UserPool struct {
	ID                     string                 `json:"Id"`
	Name                   string                 `json:"Name,omitempty"`
	SchemaAttributes       []SchemaAttribute      `json:"SchemaAttributes,omitempty"`
	UsernameAttributes     []string               `json:"UsernameAttributes,omitempty"`
	AutoVerifiedAttributes []string               `json:"AutoVerifiedAttributes,omitempty"`
	MFAConfiguration       string                 `json:"MfaConfiguration,omitempty"`
	Policies               *Policies              `json:"Policies,omitempty"`
	AdminCreateUserConfig  *AdminCreateUserConfig `json:"AdminCreateUserConfig,omitempty"`
	EmailConfiguration     *EmailConfiguration    `json:"EmailConfiguration,omitempty"`
	EstimatedNumberOfUsers int                    `json:"EstimatedNumberOfUsers"`
	CreationDate           time.Time              `json:"CreationDate,omitzero"`
	LastModifiedDate       time.Time              `json:"LastModifiedDate,omitzero"`
}

// UsernameAttributeEnabled reports whether the pool allows the named
// attribute (email, phone_number) as a login alias.
func (p UserPool) UsernameAttributeEnabled(name string) bool {
	for _, a := range p.UsernameAttributes {
		if a == name {
			return true
		}
	}
	return false
}

// User statuses as reported by the emulated service.
const (
	StatusConfirmed           = "CONFIRMED"
	StatusUnconfirmed         = "UNCONFIRMED"
	StatusForceChangePassword = "FORCE_CHANGE_PASSWORD"
)

// User is one principal inside a pool, addressed by Username.
// The password is kept verbatim: the emulator has to accept the same
// credentials tests signed up with.
type User struct {
	Username             string            `json:"Username"`
	Password             string            `json:"Password,omitempty"`
	Attributes           AttributeListType `json:"Attributes"`
	UserStatus           string            `json:"UserStatus,omitempty"`
	Enabled              bool              `json:"Enabled"`
	UserCreateDate       time.Time         `json:"UserCreateDate,omitzero"`
	UserLastModifiedDate time.Time         `json:"UserLastModifiedDate,omitzero"`
	ConfirmationCode     string            `json:"ConfirmationCode,omitempty"`
}

// Group is a named collection of users within a pool, addressed by GroupName.
type Group struct {
	GroupName        string    `json:"GroupName"`
	Description      string    `json:"Description,omitempty"`
	Precedence       *int      `json:"Precedence,omitempty"`
	RoleARN          string    `json:"RoleArn,omitempty"`
	CreationDate     time.Time `json:"CreationDate,omitzero"`
	LastModifiedDate time.Time `json:"LastModifiedDate,omitzero"`
}

// AppClient is an application registered against exactly one pool. All
// clients live in a single shared dataset keyed by ClientId, so a client id
// can be resolved without knowing the owning pool first.
type AppClient struct {
	ClientID                        string    `json:"ClientId"`
	ClientName                      string    `json:"ClientName"`
	UserPoolID                      string    `json:"UserPoolId"`
	AllowedOAuthFlowsUserPoolClient bool      `json:"AllowedOAuthFlowsUserPoolClient"`
	RefreshTokenValidity            int       `json:"RefreshTokenValidity"`
	CreationDate                    time.Time `json:"CreationDate,omitzero"`
	LastModifiedDate                time.Time `json:"LastModifiedDate,omitzero"`
}
