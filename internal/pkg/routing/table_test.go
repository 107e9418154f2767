/*
Copyright 2026 The Opsdeck Authors
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at
    http://www.apache.org/licenses/LICENSE-2.0
Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package routing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRegister(t *testing.T, tbl *Table, method, template string, key Key) {
	t.Helper()
	if err := tbl.Register(method, template, key); err != nil {
		t.Fatalf("Register(%s %s) error = %v", method, template, err)
	}
}

func TestTable_LiteralBeatsPlaceholder(t *testing.T) {
	// The parameterized route goes in first; specificity ordering, not
	// registration order, must decide the winner.
	tbl := NewTable()
	mustRegister(t, tbl, "GET", "/users/{userId}", Key{"Users", "get"})
	mustRegister(t, tbl, "GET", "/users/list", Key{"Users", "list"})

	m, ok, err := tbl.Lookup("GET", "/users/list")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Key{"Users", "list"}, m.Route.Key)
	assert.Empty(t, m.Params)

	m, ok, err = tbl.Lookup("GET", "/users/abc123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Key{"Users", "get"}, m.Route.Key)
	assert.Equal(t, map[string]string{"userId": "abc123"}, m.Params)
}

func TestTable_StableOrderForEqualSpecificity(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "GET", "/reports/{name}", Key{"Reports", "get"})
	mustRegister(t, tbl, "GET", "/exports/{name}", Key{"Exports", "get"})

	// Equal specificity, disjoint literals: neither may shadow the other.
	m, ok, err := tbl.Lookup("GET", "/exports/q3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Key{"Exports", "get"}, m.Route.Key)

	m, ok, err = tbl.Lookup("GET", "/reports/q3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Key{"Reports", "get"}, m.Route.Key)
}

func TestTable_NoMatchIsNotAnError(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "GET", "/users/{userId}", Key{"Users", "get"})

	_, ok, err := tbl.Lookup("GET", "/totally/unknown/path")
	assert.NoError(t, err)
	assert.False(t, ok)

	// Same path, wrong method.
	_, ok, err = tbl.Lookup("POST", "/users/abc")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestTable_TrailingSlashIsSignificant(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "GET", "/users", Key{"Users", "list"})

	_, ok, err := tbl.Lookup("GET", "/users/")
	assert.NoError(t, err)
	assert.False(t, ok, "trailing slash must not be normalized away")
}

func TestTable_MultiplePlaceholders(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "GET", "/users/{userId}/keys/{keyId}", Key{"ApiKeys", "get"})

	m, ok, err := tbl.Lookup("GET", "/users/u1/keys/k9")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"userId": "u1", "keyId": "k9"}, m.Params)
	assert.Equal(t, []string{"userId", "keyId"}, m.Route.ParamNames())
	assert.Equal(t, 2, m.Route.Specificity())
}

func TestTable_RegexMetacharactersStayLiteral(t *testing.T) {
	// A dot in a literal segment must not act as a wildcard, and a value
	// full of regex metacharacters must stay confined to its segment.
	tbl := NewTable()
	mustRegister(t, tbl, "GET", "/files/v1.2/{name}", Key{"Files", "get"})

	_, ok, err := tbl.Lookup("GET", "/files/v1x2/something")
	require.NoError(t, err)
	assert.False(t, ok)

	m, ok, err := tbl.Lookup("GET", "/files/v1.2/a.b(c)*+?")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a.b(c)*+?", m.Params["name"])
}

func TestTable_PercentDecoding(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "GET", "/users/{userId}", Key{"Users", "get"})

	m, ok, err := tbl.Lookup("GET", "/users/a%2Fb")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a/b", m.Params["userId"])

	_, _, err = tbl.Lookup("GET", "/users/bad%zz")
	var decodeErr *ParamDecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "userId", decodeErr.Name)
}

func TestTable_Href(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "GET", "/users/{userId}/keys/{keyId}", Key{"ApiKeys", "get"})

	href, err := tbl.Href(Key{"ApiKeys", "get"}, map[string]string{"userId": "u1", "keyId": "k9"})
	require.NoError(t, err)
	assert.Equal(t, "/users/u1/keys/k9", href)
}

func TestTable_HrefRouteNotFound(t *testing.T) {
	tbl := NewTable()

	_, err := tbl.Href(Key{"Users", "get"}, map[string]string{"userId": "u1"})
	var notFound *RouteNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, Key{"Users", "get"}, notFound.Key)
}

func TestTable_HrefMissingParameter(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "GET", "/users/{userId}", Key{"Users", "get"})

	_, err := tbl.Href(Key{"Users", "get"}, map[string]string{})
	var missing *MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"userId"}, missing.Names)
	assert.Equal(t, Key{"Users", "get"}, missing.Key)
}

func TestTable_HrefUnknownParameter(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "GET", "/users/{userId}", Key{"Users", "get"})

	_, err := tbl.Href(Key{"Users", "get"}, map[string]string{"userId": "u1", "usrId": "typo"})
	var unknown *UnknownParameterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"usrId"}, unknown.Names)
}

func TestTable_HrefEncodesValues(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "GET", "/users/{userId}", Key{"Users", "get"})

	testCases := []struct {
		name  string
		value string
	}{
		{"slash", "a/b"},
		{"space", "jane doe"},
		{"unicode", "grüße-世界"},
		{"braces", "{userId}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			href, err := tbl.Href(Key{"Users", "get"}, map[string]string{"userId": tc.value})
			require.NoError(t, err)

			// The encoded value must stay inside its own segment.
			m, ok, err := tbl.Lookup("GET", href)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, Key{"Users", "get"}, m.Route.Key)
			assert.Equal(t, tc.value, m.Params["userId"])
		})
	}
}

func TestTable_RoundTrip(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "GET", "/orgs/{orgId}/users/{userId}", Key{"OrgUsers", "get"})

	want := map[string]string{"orgId": "x", "userId": "y"}
	href, err := tbl.Href(Key{"OrgUsers", "get"}, want)
	require.NoError(t, err)

	m, ok, err := tbl.Lookup("GET", href)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, m.Params)
}

func TestTable_RegisterErrors(t *testing.T) {
	testCases := []struct {
		name     string
		method   string
		template string
		key      Key
	}{
		{"unknown method", "FETCH", "/users", Key{"Users", "list"}},
		{"no leading slash", "GET", "users", Key{"Users", "list"}},
		{"unclosed placeholder", "GET", "/users/{userId", Key{"Users", "get"}},
		{"empty placeholder", "GET", "/users/{}", Key{"Users", "get"}},
		{"stray closing brace", "GET", "/users/userId}", Key{"Users", "get"}},
		{"empty key", "GET", "/users", Key{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tbl := NewTable()
			err := tbl.Register(tc.method, tc.template, tc.key)
			assert.Error(t, err)
		})
	}
}

func TestTable_DuplicateKeyRejected(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "GET", "/users/{userId}", Key{"Users", "get"})

	err := tbl.Register("GET", "/accounts/{userId}", Key{"Users", "get"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate route key Users.get")
}

func TestTable_ConcreteScenario(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "GET", "/users/{userId}", Key{"Users", "get"})
	mustRegister(t, tbl, "POST", "/users/list", Key{"Users", "list"})

	m, ok, err := tbl.Lookup("GET", "/users/abc123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Key{"Users", "get"}, m.Route.Key)
	assert.Equal(t, map[string]string{"userId": "abc123"}, m.Params)

	href, err := tbl.Href(Key{"Users", "get"}, map[string]string{"userId": "abc123"})
	require.NoError(t, err)
	assert.Equal(t, "/users/abc123", href)

	m, ok, err = tbl.Lookup("POST", "/users/list")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Key{"Users", "list"}, m.Route.Key)
	assert.Empty(t, m.Params)
}

func TestTable_RegisterAfterLookupResorts(t *testing.T) {
	tbl := NewTable()
	mustRegister(t, tbl, "GET", "/users/{userId}", Key{"Users", "get"})

	_, ok, err := tbl.Lookup("GET", "/users/list")
	require.NoError(t, err)
	require.True(t, ok)

	// Registering after a lookup invalidates the sort; the literal route
	// must still win afterwards.
	mustRegister(t, tbl, "GET", "/users/list", Key{"Users", "list"})

	m, ok, err := tbl.Lookup("GET", "/users/list")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Key{"Users", "list"}, m.Route.Key)
}

func TestParamDecodeError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &ParamDecodeError{Name: "id", Value: "%zz", Err: inner}
	assert.ErrorIs(t, err, inner)
}
