package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	yaml := `
version: "1.2"
case_sensitive: true
mappings:
  - source: store.Entity
    target: warehouse.Record
  - source: store.Order
    target: warehouse.Order
    base_on:
      source: store.Entity
      target: warehouse.Record
    case_sensitive: false
    flatten: true
    members:
      Number: OrderNumber
      CustomerEmail: Customer.Email
      Active: IsActive
    values:
      Source: webshop
      Priority: 3
    ignore:
      - Notes
      - Internal
`

	pf, err := Parse([]byte(yaml))
	require.NoError(t, err)
	require.NotNil(t, pf)

	assert.Equal(t, "1.2", pf.Version)
	require.NotNil(t, pf.CaseSensitive)
	assert.True(t, *pf.CaseSensitive)
	require.Len(t, pf.TypeMappings, 2)

	tm := pf.TypeMappings[1]
	assert.Equal(t, "store.Order", tm.Source)
	assert.Equal(t, "warehouse.Order", tm.Target)
	assert.Equal(t, "store.Order->warehouse.Order", tm.Pair())
	assert.Equal(t, &TypePair{Source: "store.Entity", Target: "warehouse.Record"}, tm.BaseOn)
	require.NotNil(t, tm.CaseSensitive)
	assert.False(t, *tm.CaseSensitive)
	assert.True(t, tm.Flatten)

	// Members keep file order.
	assert.Equal(t, MemberMap{
		{Target: "Number", Source: "OrderNumber"},
		{Target: "CustomerEmail", Source: "Customer.Email"},
		{Target: "Active", Source: "IsActive"},
	}, tm.Members)
	assert.Equal(t, []string{"Number", "CustomerEmail", "Active"}, tm.Members.Targets())

	require.Len(t, tm.Values, 2)
	assert.Equal(t, "Source", tm.Values[0].Target)

	var source string
	require.NoError(t, tm.Values[0].Decode(&source))
	assert.Equal(t, "webshop", source)

	var priority int
	require.NoError(t, tm.Values[1].Decode(&priority))
	assert.Equal(t, 3, priority)

	assert.Equal(t, StringOrArray{"Notes", "Internal"}, tm.Ignore)
}

func TestParseMinimal(t *testing.T) {
	yaml := `
mappings:
  - source: A
    target: B
`

	pf, err := Parse([]byte(yaml))
	require.NoError(t, err)

	assert.Equal(t, DefaultVersion, pf.Version)
	assert.Nil(t, pf.CaseSensitive)
	require.Len(t, pf.TypeMappings, 1)
	assert.Equal(t, "A", pf.TypeMappings[0].Source)
	assert.Equal(t, "B", pf.TypeMappings[0].Target)
	assert.Nil(t, pf.TypeMappings[0].BaseOn)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "duplicate member",
			yaml: `
mappings:
  - source: A
    target: B
    members:
      Name: First
      Name: Last
`,
			want: "duplicate member",
		},
		{
			name: "members not a mapping",
			yaml: `
mappings:
  - source: A
    target: B
    members: [Name]
`,
			want: "members must be a mapping",
		},
		{
			name: "values not a mapping",
			yaml: `
mappings:
  - source: A
    target: B
    values: 3
`,
			want: "values must be a mapping",
		},
		{
			name: "unsupported version",
			yaml: `
version: "2"
mappings: []
`,
			want: "unsupported profile version",
		},
		{
			name: "invalid version",
			yaml: `
version: one
mappings: []
`,
			want: "invalid profile version",
		},
		{
			name: "malformed yaml",
			yaml: "mappings: [",
			want: "failed to parse mapping YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCheckVersion(t *testing.T) {
	for _, v := range []string{"1", "1.0", "1.9.3"} {
		assert.NoError(t, CheckVersion(v), v)
	}

	for _, v := range []string{"0.9", "2.0.0", "latest"} {
		assert.Error(t, CheckVersion(v), v)
	}
}

func TestParseIgnoreString(t *testing.T) {
	yaml := `
mappings:
  - source: A
    target: B
    ignore: Notes
`

	pf, err := Parse([]byte(yaml))
	require.NoError(t, err)
	assert.Equal(t, StringOrArray{"Notes"}, pf.TypeMappings[0].Ignore)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")

	require.NoError(t, os.WriteFile(path, []byte("mappings:\n  - source: A\n    target: B\n"), 0o600))

	pf, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, pf.TypeMappings, 1)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read mapping profile")

	require.NoError(t, os.WriteFile(path, []byte("version: 3\n"), 0o600))

	_, err = LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestLoadExampleProfile(t *testing.T) {
	pf, err := LoadFile("../../examples/profile.yaml")
	require.NoError(t, err)

	assert.Len(t, pf.TypeMappings, 5)
	assert.True(t, ValidateStructure(pf).IsValid())
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		input    string
		expected FieldPath
		wantErr  bool
	}{
		{
			input: "Name",
			expected: FieldPath{
				Segments: []PathSegment{{Name: "Name", IsSlice: false}},
			},
		},
		{
			input: "Address.Street",
			expected: FieldPath{
				Segments: []PathSegment{
					{Name: "Address", IsSlice: false},
					{Name: "Street", IsSlice: false},
				},
			},
		},
		{
			input: "Items[].ProductID",
			expected: FieldPath{
				Segments: []PathSegment{
					{Name: "Items", IsSlice: true},
					{Name: "ProductID", IsSlice: false},
				},
			},
		},
		{input: "", wantErr: true},
		{input: ".", wantErr: true},
		{input: "Field.", wantErr: true},
		{input: ".Field", wantErr: true},
		{input: "[]", wantErr: true},
		{input: "123Invalid", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParsePath(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestParseMemberPath(t *testing.T) {
	fp, err := ParseMemberPath("Customer.Address.City")
	require.NoError(t, err)
	assert.Equal(t, []string{"Customer", "Address", "City"}, fp.Names())
	assert.False(t, fp.IsSimple())

	_, err = ParseMemberPath("Items[].Name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element paths are not supported")
}

func TestFieldPathString(t *testing.T) {
	tests := []struct {
		path     FieldPath
		expected string
	}{
		{
			path: FieldPath{
				Segments: []PathSegment{{Name: "Name", IsSlice: false}},
			},
			expected: "Name",
		},
		{
			path: FieldPath{
				Segments: []PathSegment{
					{Name: "Items", IsSlice: true},
					{Name: "ProductID", IsSlice: false},
				},
			},
			expected: "Items[].ProductID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.path.String())
		})
	}
}

func TestFieldPathIsSimple(t *testing.T) {
	simple := FieldPath{Segments: []PathSegment{{Name: "Name", IsSlice: false}}}
	assert.True(t, simple.IsSimple())

	nested := FieldPath{Segments: []PathSegment{
		{Name: "Address", IsSlice: false},
		{Name: "Street", IsSlice: false},
	}}
	assert.False(t, nested.IsSimple())

	slice := FieldPath{Segments: []PathSegment{{Name: "Items", IsSlice: true}}}
	assert.False(t, slice.IsSimple())
}

func TestFieldPathEquals(t *testing.T) {
	path1 := FieldPath{Segments: []PathSegment{{Name: "A", IsSlice: false}}}
	path2 := FieldPath{Segments: []PathSegment{{Name: "A", IsSlice: false}}}
	path3 := FieldPath{Segments: []PathSegment{{Name: "B", IsSlice: false}}}
	path4 := FieldPath{Segments: []PathSegment{{Name: "A", IsSlice: true}}}

	assert.True(t, path1.Equals(path2))
	assert.False(t, path1.Equals(path3))
	assert.False(t, path1.Equals(path4))
}

func TestMarshal(t *testing.T) {
	yes := true
	pf := &ProfileFile{
		Version:       "1",
		CaseSensitive: &yes,
		TypeMappings: []TypeMapping{
			{
				Source: "store.Order",
				Target: "warehouse.Order",
				BaseOn: &TypePair{Source: "store.Entity", Target: "warehouse.Record"},
				Members: MemberMap{
					{Target: "Number", Source: "OrderNumber"},
					{Target: "CustomerEmail", Source: "Customer.Email"},
				},
				Ignore: StringOrArray{"Notes"},
			},
		},
	}

	data, err := Marshal(pf)
	require.NoError(t, err)
	assert.Contains(t, string(data), "store.Order")
	assert.Contains(t, string(data), "CustomerEmail: Customer.Email")
	assert.Contains(t, string(data), "ignore: Notes")

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, pf.TypeMappings[0].Members, parsed.TypeMappings[0].Members)
	assert.Equal(t, pf.TypeMappings[0].BaseOn, parsed.TypeMappings[0].BaseOn)
	assert.Equal(t, pf.TypeMappings[0].Ignore, parsed.TypeMappings[0].Ignore)
}

func TestMarshalValues(t *testing.T) {
	pf, err := Parse([]byte(`
mappings:
  - source: A
    target: B
    values:
      Source: webshop
      Count: 2
`))
	require.NoError(t, err)

	data, err := Marshal(pf)
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, again.TypeMappings[0].Values, 2)

	var count int
	require.NoError(t, again.TypeMappings[0].Values[1].Decode(&count))
	assert.Equal(t, 2, count)
}

func TestMarshalStringOrArray(t *testing.T) {
	single := StringOrArray{"Name"}
	data, err := single.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "Name", data)

	multi := StringOrArray{"First", "Second"}
	data, err = multi.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second"}, data)
}

func TestStringOrArrayFirst(t *testing.T) {
	assert.Equal(t, "", StringOrArray{}.First())
	assert.Equal(t, "one", StringOrArray{"one", "two"}.First())
}

func TestValueRefDecodeEmpty(t *testing.T) {
	var out string
	assert.Error(t, ValueRef{Target: "X"}.Decode(&out))
}
