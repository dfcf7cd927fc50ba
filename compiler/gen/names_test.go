package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPascal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user", "User"},
		{"blog_post", "BlogPost"},
		{"id", "ID"},
		{"user_id", "UserID"},
		{"api_key", "APIKey"},
		{"avatar_url", "AvatarURL"},
		{"uuid", "UUID"},
		{"payload_json", "PayloadJSON"},
		// Entity names arrive in CamelCase already; interior capitals
		// must survive so StructName and relation attributes agree.
		{"BlogPost", "BlogPost"},
		{"User", "User"},
		{"APIKey", "APIKey"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Pascal(tt.in))
		})
	}
}

func TestSnake(t *testing.T) {
	assert.Equal(t, "blog_post", Snake("BlogPost"))
	assert.Equal(t, "user", Snake("User"))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "users", Plural("user"))
	assert.Equal(t, "categories", Plural("category"))
	assert.Equal(t, "people", Plural("person"))
}

func TestTableOf(t *testing.T) {
	assert.Equal(t, "users", tableOf("User"))
	assert.Equal(t, "blog_posts", tableOf("BlogPost"))
}

func TestReceiver(t *testing.T) {
	assert.Equal(t, "u", receiver("User"))
	assert.Equal(t, "b", receiver("BlogPost"))
	assert.Equal(t, "id", receiver("ID"))
	assert.Equal(t, "c", receiver("category"))
}

// A CamelCase entity name must map onto one consistent identifier for
// the struct name, the relation attribute and the receiver.
func TestCamelCaseNamesAgree(t *testing.T) {
	r := &Relation{Kind: O2M, Target: "BlogPost"}
	assert.Equal(t, "BlogPost", Pascal("BlogPost"))
	assert.Equal(t, "BlogPosts", r.StructField())
	assert.Equal(t, "b", receiver("BlogPost"))
}
