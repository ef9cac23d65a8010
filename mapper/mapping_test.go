package mapper

import (
	"reflect"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePerson() Person {
	return Person{
		ID:       7,
		Name:     "Ada",
		Age:      36,
		Address:  &Address{Street: "1 Main St", City: "London", Country: "UK"},
		Tags:     []string{"math", "poetry"},
		Nickname: ptr("Countess"),
	}
}

func TestImplicitMembers(t *testing.T) {
	r := newRegistry(t)

	out, err := Map[Person, PersonView](r, samplePerson())
	require.NoError(t, err)

	want := PersonView{
		ID:       7,
		Name:     "Ada",
		Age:      36,
		Tags:     []string{"math", "poetry"},
		Nickname: "Countess",
	}
	assert.Equal(t, want, out, spew.Sdump(out))
}

func TestRoundTripOfSameNamedMembers(t *testing.T) {
	type left struct {
		X, Y  int
		Label string
		Ratio float64
	}

	type right struct {
		X, Y  int
		Label string
		Ratio float64
	}

	r := newRegistry(t)
	in := left{X: 1, Y: -2, Label: "p", Ratio: 0.5}

	mid, err := Map[left, right](r, in)
	require.NoError(t, err)

	back, err := Map[right, left](r, mid)
	require.NoError(t, err)
	assert.Equal(t, in, back)
}

func TestFlattening(t *testing.T) {
	r := newRegistry(t)

	cfg, err := Register[Person, PersonView](r)
	require.NoError(t, err)
	cfg.Flatten()

	out, err := Map[Person, PersonView](r, samplePerson())
	require.NoError(t, err)
	assert.Equal(t, "London", out.AddressCity)
	assert.Equal(t, "UK", out.AddressCountry)

	nilAddress := samplePerson()
	nilAddress.Address = nil

	out, err = Map[Person, PersonView](r, nilAddress)
	require.NoError(t, err)
	assert.Empty(t, out.AddressCity)
}

func TestFlatteningIsOptIn(t *testing.T) {
	r := newRegistry(t)

	out, err := Map[Person, PersonView](r, samplePerson())
	require.NoError(t, err)
	assert.Empty(t, out.AddressCity)
}

func TestExpressionRule(t *testing.T) {
	r := newRegistry(t)

	cfg, err := Register[Person, PersonView](r)
	require.NoError(t, err)
	cfg.Member("Note", "Address.Street")

	out, err := Map[Person, PersonView](r, samplePerson())
	require.NoError(t, err)
	assert.Equal(t, "1 Main St", out.Note)

	rules := cfg.Config().Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, RuleExpression, rules[0].Kind)
	assert.Equal(t, "Address.Street", rules[0].SourcePath())
}

func TestInvalidMemberPath(t *testing.T) {
	r := newRegistry(t)

	cfg, err := Register[Person, PersonView](r)
	require.NoError(t, err)

	cfg.Member("Note", "Tags[].Name")
	require.ErrorIs(t, cfg.Err(), ErrCompilation)
	assert.Empty(t, cfg.Config().Rules())
}

func TestConstantRule(t *testing.T) {
	r := newRegistry(t)

	cfg, err := Register[Person, PersonView](r)
	require.NoError(t, err)
	cfg.Value("Source", "import").Value("Age", 42)

	out, err := Map[Person, PersonView](r, samplePerson())
	require.NoError(t, err)
	assert.Equal(t, "import", out.Source)
	assert.Equal(t, 42, out.Age)
}

func TestConstantOfWrongType(t *testing.T) {
	r := newRegistry(t)

	cfg, err := Register[Person, PersonView](r)
	require.NoError(t, err)
	cfg.Value("Name", 3)

	_, err = Map[Person, PersonView](r, samplePerson())
	require.ErrorIs(t, err, ErrCompilation)
	assert.Contains(t, err.Error(), "(member Name)")
}

func TestIgnoreRule(t *testing.T) {
	r := newRegistry(t)

	cfg, err := Register[Person, *PersonView](r)
	require.NoError(t, err)
	cfg.Ignore("Name", "tags")

	out, err := Map[Person, *PersonView](r, samplePerson())
	require.NoError(t, err)
	assert.Empty(t, out.Name)
	assert.Nil(t, out.Tags)

	existing := &PersonView{Name: "kept", Tags: []string{"kept"}}

	out, err = MapInto(r, samplePerson(), existing)
	require.NoError(t, err)
	assert.Same(t, existing, out)
	assert.Equal(t, "kept", out.Name)
	assert.Equal(t, []string{"kept"}, out.Tags)
	assert.Equal(t, int64(7), out.ID)
}

func TestLaterRuleReplacesEarlier(t *testing.T) {
	r := newRegistry(t)

	cfg, err := Register[Person, PersonView](r)
	require.NoError(t, err)
	cfg.Member("Note", "Name").Value("Source", "a").Ignore("note").Value("Source", "b")

	rules := cfg.Config().Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "Note", rules[0].Member)
	assert.Equal(t, RuleIgnore, rules[0].Kind)
	assert.Equal(t, "b", rules[1].Value)

	out, err := Map[Person, PersonView](r, samplePerson())
	require.NoError(t, err)
	assert.Empty(t, out.Note)
	assert.Equal(t, "b", out.Source)
}

func TestFunctionRule(t *testing.T) {
	r := newRegistry(t)

	cfg, err := Register[Person, PersonView](r)
	require.NoError(t, err)
	cfg.Function("Note", func(p Person) any { return strings.ToUpper(p.Name) }).
		Function("ID", func(p Person) any { return p.ID * 10 }).
		Function("Source", func(Person) any { return nil })

	out, err := Map[Person, PersonView](r, samplePerson())
	require.NoError(t, err)
	assert.Equal(t, "ADA", out.Note)
	assert.Equal(t, int64(70), out.ID)
	assert.Empty(t, out.Source)
}

func TestFunctionRuleIncompatibleResult(t *testing.T) {
	r := newRegistry(t)

	cfg, err := Register[Person, PersonView](r)
	require.NoError(t, err)
	cfg.Function("Age", func(Person) any { return "old" })

	_, err = Map[Person, PersonView](r, samplePerson())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "member Age")
}

func TestUntypedFunctionRule(t *testing.T) {
	r := newRegistry(t)

	cfg, err := r.RegisterTypes(reflect.TypeFor[Person](), reflect.TypeFor[PersonView]())
	require.NoError(t, err)
	cfg.Function("Note", func(src any) any { return src.(Person).Name + "!" })

	require.NoError(t, cfg.Err())

	cfg.Function("Source", nil)
	require.ErrorIs(t, cfg.Err(), ErrCompilation)

	out, err := Map[Person, PersonView](r, samplePerson())
	require.NoError(t, err)
	assert.Equal(t, "Ada!", out.Note)
}

func TestHooks(t *testing.T) {
	r := newRegistry(t)

	var calls []string

	cfg, err := Register[Person, *PersonView](r)
	require.NoError(t, err)
	cfg.Before(func(p Person, d *PersonView) {
		calls = append(calls, "before")
		assert.Nil(t, d, "allocate-new has no destination yet")
	}).After(func(p Person, d *PersonView) {
		calls = append(calls, "after")
		assert.Equal(t, "Ada", d.Name, "members are mapped before the after hook")
		d.Note = "seen " + p.Name
	})

	out, err := Map[Person, *PersonView](r, samplePerson())
	require.NoError(t, err)
	assert.Equal(t, []string{"before", "after"}, calls)
	assert.Equal(t, "seen Ada", out.Note)
}

func TestBeforeHookSeesExistingDestination(t *testing.T) {
	r := newRegistry(t)

	existing := &PersonView{Note: "existing"}

	var seen *PersonView

	cfg, err := Register[Person, *PersonView](r)
	require.NoError(t, err)
	cfg.Before(func(_ Person, d *PersonView) { seen = d })

	_, err = MapInto(r, samplePerson(), existing)
	require.NoError(t, err)
	assert.Same(t, existing, seen)
}

func TestInstantiate(t *testing.T) {
	r := newRegistry(t)

	cfg, err := Register[Person, *PersonView](r)
	require.NoError(t, err)
	cfg.Instantiate(func(p Person) *PersonView { return &PersonView{Note: "made for " + p.Name} })

	out, err := Map[Person, *PersonView](r, samplePerson())
	require.NoError(t, err)
	assert.Equal(t, "made for Ada", out.Note)
	assert.Equal(t, "Ada", out.Name)

	// Populate-existing keeps the caller's destination.
	existing := &PersonView{}

	out, err = MapInto(r, samplePerson(), existing)
	require.NoError(t, err)
	assert.Same(t, existing, out)
	assert.Empty(t, out.Note)
}

func TestUntypedInstantiate(t *testing.T) {
	r := newRegistry(t)

	cfg, err := r.RegisterTypes(reflect.TypeFor[Person](), reflect.TypeFor[PersonView]())
	require.NoError(t, err)
	cfg.Instantiate(func(any) any { return PersonView{Source: "factory"} })

	out, err := Map[Person, PersonView](r, samplePerson())
	require.NoError(t, err)
	assert.Equal(t, "factory", out.Source)
	assert.Equal(t, "Ada", out.Name)
}

func TestPopulateValueDestination(t *testing.T) {
	r := newRegistry(t)

	dst := PersonView{Note: "keep"}

	out, err := MapInto(r, samplePerson(), dst)
	require.NoError(t, err)
	assert.Equal(t, "keep", out.Note)
	assert.Equal(t, "Ada", out.Name)
	assert.Empty(t, dst.Name, "value destinations are copied")
}

func TestMapIntoNilPointerAllocates(t *testing.T) {
	r := newRegistry(t)

	out, err := MapInto[Person, *PersonView](r, samplePerson(), nil)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "Ada", out.Name)
}

func TestNestedObjects(t *testing.T) {
	r, logs := observedRegistry(t)

	src := Employee{Name: "Ada", Home: &Address{City: "London", Country: "UK"}}

	out, err := Map[Employee, EmployeeDto](r, src)
	require.NoError(t, err)
	require.NotNil(t, out.Home)
	assert.Equal(t, AddressDto{City: "London", Country: "UK"}, *out.Home)

	assert.True(t, r.MapExists(reflect.TypeFor[*Address](), reflect.TypeFor[*AddressDto]()))
	assert.Equal(t, 2, logs.FilterMessage("registered mapping implicitly").Len())

	out, err = Map[Employee, EmployeeDto](r, Employee{Name: "Bob"})
	require.NoError(t, err)
	assert.Nil(t, out.Home)
}

func TestNestedPopulateReusesMembers(t *testing.T) {
	r := newRegistry(t)

	home := &AddressDto{City: "Paris"}
	dst := &EmployeeDto{Home: home}

	out, err := MapInto(r, Employee{Name: "Ada", Home: &Address{City: "London"}}, dst)
	require.NoError(t, err)
	assert.Same(t, home, out.Home)
	assert.Equal(t, "London", home.City)
}

func TestNilSource(t *testing.T) {
	r := newRegistry(t)

	out, err := Map[*Person, *PersonView](r, nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	view, err := Map[*Person, PersonView](r, nil)
	require.NoError(t, err)
	assert.Zero(t, view)
}

func TestPointerSource(t *testing.T) {
	r := newRegistry(t)

	p := samplePerson()

	out, err := Map[*Person, PersonView](r, &p)
	require.NoError(t, err)
	assert.Equal(t, "Ada", out.Name)
}

func TestInterfaceSource(t *testing.T) {
	r := newRegistry(t)

	cfg, err := Register[PersonEntity, PersonDto](r)
	require.NoError(t, err)
	cfg.Member("FullName", "Name")

	var src any = PersonEntity{Id: 4, Name: "Hedy"}

	out, err := Map[any, PersonDto](r, src)
	require.NoError(t, err)
	assert.Equal(t, PersonDto{Id: 4, FullName: "Hedy"}, out)

	out, err = Map[any, PersonDto](r, nil)
	require.NoError(t, err)
	assert.Zero(t, out)
}

func TestMapType(t *testing.T) {
	r := newRegistry(t)

	src, dst := reflect.TypeFor[PersonEntity](), reflect.TypeFor[PersonDto]()

	cfg, err := r.RegisterTypes(src, dst)
	require.NoError(t, err)
	cfg.Member("FullName", "Name")

	out, err := r.MapType(src, dst, PersonEntity{Id: 1, Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, PersonDto{Id: 1, FullName: "Ada"}, out)

	into, err := r.MapTypeInto(src, reflect.TypeFor[*PersonDto](), PersonEntity{Id: 2}, &PersonDto{FullName: "kept"})
	require.NoError(t, err)
	assert.Equal(t, &PersonDto{Id: 2, FullName: "kept"}, into, "the pointer pair is registered implicitly with same-name rules")

	_, err = r.MapType(src, dst, "not a person")
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = r.MapTypeInto(src, dst, PersonEntity{}, 42)
	require.ErrorIs(t, err, ErrUnsupportedType)

	out, err = r.MapType(src, dst, nil)
	require.NoError(t, err)
	assert.Equal(t, PersonDto{}, out)
}

func TestMapTypeCollections(t *testing.T) {
	r := newRegistry(t)

	out, err := r.MapType(reflect.TypeFor[[]PersonEntity](), reflect.TypeFor[[]PersonDto](),
		[]PersonEntity{{Id: 1}, {Id: 2}})
	require.NoError(t, err)
	assert.Equal(t, []PersonDto{{Id: 1}, {Id: 2}}, out)
}
