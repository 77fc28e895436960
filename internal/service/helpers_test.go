package service

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/domain"
	"github.com/ctOP-IIITH/backend/internal/onem2m"
	"github.com/ctOP-IIITH/backend/internal/repository"
)

// fakeTree is a scripted ResourceTree. Zero-valued statuses mean success.
type treeCall struct {
	op      string
	name    string
	parent  string
	content string
	labels  []string
}

type fakeTree struct {
	calls []treeCall

	aeStatus        int
	containerStatus map[string]int // keyed by container name
	cinStatus       int
	deleteStatus    int
	getStatus       int
	getBody         []byte
	err             error
}

func newFakeTree() *fakeTree {
	return &fakeTree{containerStatus: map[string]int{}}
}

func (f *fakeTree) status(s, def int) int {
	if s == 0 {
		return def
	}
	return s
}

func (f *fakeTree) CreateAE(_ context.Context, name string, labels []string) (int, []byte, error) {
	f.calls = append(f.calls, treeCall{op: "ae", name: name, labels: labels})
	if f.err != nil {
		return 0, nil, f.err
	}
	return f.status(f.aeStatus, 201), []byte(fmt.Sprintf(`{"m2m:ae":{"ri":"ae-%s"}}`, name)), nil
}

func (f *fakeTree) CreateContainer(_ context.Context, name, parentPath string, labels []string) (int, []byte, error) {
	f.calls = append(f.calls, treeCall{op: "container", name: name, parent: parentPath, labels: labels})
	if f.err != nil {
		return 0, nil, f.err
	}
	status := f.containerStatus[name]
	return f.status(status, 201), []byte(fmt.Sprintf(`{"m2m:cnt":{"ri":"cnt-%s"}}`, name)), nil
}

func (f *fakeTree) CreateContentInstance(_ context.Context, parentPath, childName, content string, labels []string) (int, []byte, error) {
	f.calls = append(f.calls, treeCall{op: "cin", name: childName, parent: parentPath, content: content, labels: labels})
	if f.err != nil {
		return 0, nil, f.err
	}
	return f.status(f.cinStatus, 201), []byte(`{"m2m:cin":{"ri":"cin-1"}}`), nil
}

func (f *fakeTree) DeleteResource(_ context.Context, path string) (int, []byte, error) {
	f.calls = append(f.calls, treeCall{op: "delete", name: path})
	if f.err != nil {
		return 0, nil, f.err
	}
	return f.status(f.deleteStatus, 200), nil, nil
}

func (f *fakeTree) GetContainer(_ context.Context, path string, resolveAll bool) (int, []byte, error) {
	f.calls = append(f.calls, treeCall{op: "get", name: path})
	if f.err != nil {
		return 0, nil, f.err
	}
	return f.status(f.getStatus, 200), f.getBody, nil
}

func (f *fakeTree) callsOf(op string) []treeCall {
	var out []treeCall
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

type fakePostal struct {
	code string
	err  error
}

func (f *fakePostal) PostalCode(context.Context, float64, float64) (string, error) {
	return f.code, f.err
}

// fixture wires memory repos and fakes into a NodeService.
type fixture struct {
	verticals   *repository.MemoryVerticalsRepo
	sensorTypes *repository.MemorySensorTypesRepo
	nodes       *repository.MemoryNodesRepo
	tokens      *repository.MemoryTokensRepo
	users       *repository.MemoryUsersRepo
	owners      *repository.MemoryNodeOwnersRepo
	tree        *fakeTree
	postal      *fakePostal
	nodeSvc     NodeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sensorTypes := repository.NewMemorySensorTypesRepo()
	f := &fixture{
		verticals:   repository.NewMemoryVerticalsRepo(sensorTypes),
		sensorTypes: sensorTypes,
		nodes:       repository.NewMemoryNodesRepo(),
		tokens:      repository.NewMemoryTokensRepo(),
		users:       repository.NewMemoryUsersRepo(),
		owners:      repository.NewMemoryNodeOwnersRepo(),
		tree:        newFakeTree(),
		postal:      &fakePostal{code: "500032"},
	}
	f.nodeSvc = NewNodeService(f.nodes, f.sensorTypes, f.verticals, f.owners, f.users,
		f.tree, onem2m.ParseResourceID, f.postal, zap.NewNop())
	return f
}

// seedCatalog creates the Water Quality vertical and one sensor type.
func (f *fixture) seedCatalog(t *testing.T) *domain.SensorType {
	t.Helper()
	ctx := context.Background()
	if _, err := f.verticals.Insert(ctx, &domain.Vertical{
		Name:      "Water Quality",
		ShortCode: "WQ",
		Labels:    []string{"WQ"},
		ORID:      "ae-AE-WQ",
	}); err != nil {
		t.Fatalf("seed vertical: %v", err)
	}
	st := &domain.SensorType{
		Name:       "Water Flow Sensor",
		Parameters: []string{"flow", "temperature"},
		DataTypes:  []string{"float", "float"},
		VerticalID: 1,
	}
	if _, err := f.sensorTypes.Insert(ctx, st); err != nil {
		t.Fatalf("seed sensor type: %v", err)
	}
	return st
}
