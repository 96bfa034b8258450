package proxy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sammck-go/rgate/wire"
)

// fakeInvoker is a scripted Invoker recording every call it receives, for
// testing the proxy layer in isolation from any real transport.
type fakeInvoker struct {
	calls    []string
	fields   map[string]wire.Value
	response wire.Value
	err      error
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{fields: map[string]wire.Value{}}
}

func (f *fakeInvoker) CallMethod(ctx context.Context, targetID, method string, args []wire.Value) (wire.Value, error) {
	f.calls = append(f.calls, "call:"+targetID+"."+method)
	return f.response, f.err
}
func (f *fakeInvoker) CallConstructor(ctx context.Context, fqn string, args []wire.Value) (wire.Value, error) {
	f.calls = append(f.calls, "construct:"+fqn)
	return f.response, f.err
}
func (f *fakeInvoker) GetField(ctx context.Context, targetID, field string) (wire.Value, error) {
	f.calls = append(f.calls, "getfield:"+targetID+"."+field)
	return f.fields[targetID+"."+field], f.err
}
func (f *fakeInvoker) SetField(ctx context.Context, targetID, field string, value wire.Value) error {
	f.calls = append(f.calls, "setfield:"+targetID+"."+field)
	f.fields[targetID+"."+field] = value
	return f.err
}
func (f *fakeInvoker) ReleaseObject(ctx context.Context, targetID string) {
	f.calls = append(f.calls, "release:"+targetID)
}
func (f *fakeInvoker) GetMethods(ctx context.Context, targetID string) ([]string, error) {
	return nil, f.err
}
func (f *fakeInvoker) GetFields(ctx context.Context, targetID string) ([]string, error) {
	return nil, f.err
}
func (f *fakeInvoker) GetStaticMembers(ctx context.Context, fqn string) ([]string, error) {
	return nil, f.err
}
func (f *fakeInvoker) Help(ctx context.Context, targetID, pattern string) (string, error) {
	return "help text", f.err
}
func (f *fakeInvoker) NewArray(ctx context.Context, fqn string, dims []wire.Value) (wire.Value, error) {
	return f.response, f.err
}
func (f *fakeInvoker) Import(ctx context.Context, viewID, fqn string) error {
	f.calls = append(f.calls, "import:"+viewID+"."+fqn)
	return f.err
}
func (f *fakeInvoker) RemoveImport(ctx context.Context, viewID, fqn string) error {
	f.calls = append(f.calls, "removeimport:"+viewID+"."+fqn)
	return f.err
}
func (f *fakeInvoker) ListSort(ctx context.Context, targetID string) error {
	f.calls = append(f.calls, "sort:"+targetID)
	return f.err
}
func (f *fakeInvoker) ListReverse(ctx context.Context, targetID string) error {
	f.calls = append(f.calls, "reverse:"+targetID)
	return f.err
}
func (f *fakeInvoker) ListSubList(ctx context.Context, targetID string, from, to int) (wire.Value, error) {
	return wire.FromReference("sub0", wire.TagList), f.err
}
func (f *fakeInvoker) ListCount(ctx context.Context, targetID string, v wire.Value) (wire.Value, error) {
	return wire.FromInt32(3), f.err
}
func (f *fakeInvoker) ArrayGet(ctx context.Context, targetID string, i int) (wire.Value, error) {
	return f.response, f.err
}
func (f *fakeInvoker) ArraySet(ctx context.Context, targetID string, i int, v wire.Value) error {
	return f.err
}
func (f *fakeInvoker) ArrayLength(ctx context.Context, targetID string) (int, error) {
	return 0, f.err
}
func (f *fakeInvoker) ArraySlice(ctx context.Context, targetID string, from, to int) (wire.Value, error) {
	return wire.FromReference("slice0", wire.TagArray), f.err
}

func TestObjectCallRefusesThen(t *testing.T) {
	inv := newFakeInvoker()
	obj := NewObject(inv, "o0")
	_, err := obj.Call(context.Background(), "then")
	require.ErrorIs(t, err, ErrNoSuchProperty)
}

func TestObjectCallDelegatesToInvoker(t *testing.T) {
	inv := newFakeInvoker()
	inv.response = wire.FromString("ok")
	obj := NewObject(inv, "o0")
	v, err := obj.Call(context.Background(), "greet")
	require.NoError(t, err)
	require.Equal(t, "ok", v.Str)
	require.Contains(t, inv.calls, "call:o0.greet")
}

func TestClassTargetIDUsesStaticPrefix(t *testing.T) {
	inv := newFakeInvoker()
	class := NewClass(inv, "java.util.ArrayList")
	require.Equal(t, "z:java.util.ArrayList", class.TargetID())
}

func TestClassConstructCallsConstructor(t *testing.T) {
	inv := newFakeInvoker()
	class := NewClass(inv, "java.util.ArrayList")
	_, err := class.Construct(context.Background())
	require.NoError(t, err)
	require.Contains(t, inv.calls, "construct:java.util.ArrayList")
}

func TestPackagePropUppercasePromotesToClass(t *testing.T) {
	inv := newFakeInvoker()
	pkg := NewPackage(inv, "java.util")
	node, err := pkg.Prop("ArrayList")
	require.NoError(t, err)
	class, ok := node.(*Class)
	require.True(t, ok)
	require.Equal(t, "java.util.ArrayList", class.FQN())
}

func TestPackagePropLowercaseStaysPackage(t *testing.T) {
	inv := newFakeInvoker()
	pkg := NewPackage(inv, "java")
	node, err := pkg.Prop("util")
	require.NoError(t, err)
	_, ok := node.(*Package)
	require.True(t, ok)
}

func TestPackageIsNotCallable(t *testing.T) {
	inv := newFakeInvoker()
	pkg := NewPackage(inv, "java.util")
	_, err := pkg.Call(context.Background())
	require.Error(t, err)
}

func TestViewImportRegistersShortcut(t *testing.T) {
	inv := newFakeInvoker()
	view := NewView(inv, "rj", "rj")
	err := view.Import(context.Background(), "java.util.ArrayList")
	require.NoError(t, err)

	node, err := view.Prop("ArrayList")
	require.NoError(t, err)
	class, ok := node.(*Class)
	require.True(t, ok)
	require.Equal(t, "java.util.ArrayList", class.FQN())
}

func TestViewImportStarDoesNotRegisterShortcut(t *testing.T) {
	inv := newFakeInvoker()
	view := NewView(inv, "rj", "rj")
	err := view.Import(context.Background(), "java.util.*")
	require.NoError(t, err)

	node, err := view.Prop("*")
	require.NoError(t, err)
	_, ok := node.(*Package)
	require.True(t, ok)
}

func TestViewRemoveImportClearsShortcut(t *testing.T) {
	inv := newFakeInvoker()
	view := NewView(inv, "rj", "rj")
	require.NoError(t, view.Import(context.Background(), "java.util.ArrayList"))
	require.NoError(t, view.RemoveImport(context.Background(), "java.util.ArrayList"))

	node, err := view.Prop("ArrayList")
	require.NoError(t, err)
	class, ok := node.(*Class)
	require.True(t, ok, "uppercase name still promotes to Class even without a shortcut")
	require.Equal(t, "ArrayList", class.FQN())
}

func TestListSizeAndGet(t *testing.T) {
	inv := newFakeInvoker()
	inv.response = wire.FromInt32(7)
	list := NewList(inv, "l0")
	n, err := list.Size(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, n)

	v, err := list.Get(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, int32(7), v.Int32)
	require.Contains(t, inv.calls, "call:l0.get")
}

func TestListSubListWrapsAsList(t *testing.T) {
	inv := newFakeInvoker()
	list := NewList(inv, "l0")
	sub, err := list.SubList(context.Background(), 0, 2)
	require.NoError(t, err)
	require.Equal(t, "sub0", sub.TargetID())
}

func TestListCount(t *testing.T) {
	inv := newFakeInvoker()
	list := NewList(inv, "l0")
	n, err := list.Count(context.Background(), wire.FromString("x"))
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestWrapDispatchesOnTag(t *testing.T) {
	inv := newFakeInvoker()
	cases := []struct {
		tag  wire.Tag
		want interface{}
	}{
		{wire.TagList, &List{}},
		{wire.TagSet, &Set{}},
		{wire.TagMap, &Map{}},
		{wire.TagArray, &Array{}},
		{wire.TagIterator, &Iterator{}},
		{wire.TagReference, &Object{}},
	}
	for _, c := range cases {
		got, err := Wrap(inv, "id0", c.tag)
		require.NoError(t, err)
		require.IsType(t, c.want, got)
	}
}

func TestIteratorDrain(t *testing.T) {
	inv := newFakeInvoker()
	inv.response = wire.FromBool(false) // hasNext -> false immediately
	it := NewIterator(inv, "it0")
	values, err := it.Drain(context.Background())
	require.NoError(t, err)
	require.Empty(t, values)
}
