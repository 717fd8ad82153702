package deadcode

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDescriptor(t *testing.T) {
	d, err := NewDescriptor(
		IgnoreMethodNames("initialize", "/^test_/", regexp.MustCompile(`_callback$`)),
		IgnoreClassNames("ApplicationRecord"),
		IgnoreModuleNames("/Helper$/"),
		IgnoreConstantNames("VERSION"),
		IgnoreClassesInheritingFrom("::Minitest::Test"),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"initialize"}, d.IgnoredNames())
	assert.Equal(t, []string{"^test_", "_callback$"}, d.IgnoredPatterns())
	assert.False(t, d.Empty())

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"exact method", d.IgnoresMethod("initialize"), true},
		{"pattern method", d.IgnoresMethod("test_login"), true},
		{"regexp method", d.IgnoresMethod("after_callback"), true},
		{"other method", d.IgnoresMethod("initialize_copy"), false},
		{"class name", d.IgnoresClass("ApplicationRecord", ""), true},
		{"class superclass", d.IgnoresClass("LoginTest", "Minitest::Test"), true},
		{"class unrelated", d.IgnoresClass("Login", "Object"), false},
		{"module pattern", d.IgnoresModule("UsersHelper"), true},
		{"module other", d.IgnoresModule("Users"), false},
		{"constant", d.IgnoresConstant("VERSION"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestNewDescriptor_Errors(t *testing.T) {
	tests := []struct {
		name string
		opt  DescriptorOption
	}{
		{"wrong type", IgnoreMethodNames(42)},
		{"empty name", IgnoreMethodNames("")},
		{"bad pattern", IgnoreMethodNames("/(/")},
		{"nil regexp", IgnoreClassNames((*regexp.Regexp)(nil))},
		{"empty superclass", IgnoreClassesInheritingFrom("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDescriptor(tt.opt)
			assert.Nil(t, d)
			assert.True(t, errors.Is(err, ErrRegistration), "got %v", err)
		})
	}
}

func TestMustDescriptor_Panics(t *testing.T) {
	assert.Panics(t, func() { MustDescriptor(IgnoreMethodNames(3.14)) })
}

func TestDescriptor_NilAndEmpty(t *testing.T) {
	var d *Descriptor
	assert.True(t, d.Empty())
	assert.False(t, d.IgnoresMethod("x"))
	assert.Equal(t, "", d.String())

	empty, err := NewDescriptor()
	require.NoError(t, err)
	assert.True(t, empty.Empty())
}

func TestDescriptor_StringIsStable(t *testing.T) {
	a := MustDescriptor(IgnoreMethodNames("b", "a", "/x/"))
	b := MustDescriptor(IgnoreMethodNames("a", "b", "/x/"))
	assert.Equal(t, a.String(), b.String())

	c := MustDescriptor(IgnoreMethodNames("a"))
	assert.NotEqual(t, a.String(), c.String())
}

func TestChain_Fingerprint(t *testing.T) {
	one := NewBase("one", MustDescriptor(IgnoreMethodNames("x")))
	two := NewBase("two", nil)

	assert.NotEqual(t, NewChain(one, two).Fingerprint(), NewChain(two, one).Fingerprint())
	assert.Equal(t, NewChain(one, two).Fingerprint(), NewChain(one, two).Fingerprint())
	assert.Equal(t, 2, NewChain(one, two).Len())

	var nilChain *Chain
	assert.Equal(t, 0, nilChain.Len())
	assert.Empty(t, nilChain.Plugins())
}
