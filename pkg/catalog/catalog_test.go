package catalog

import (
	"reflect"
	"strings"
	"testing"

	"github.com/seashells/side/pkg/storage/storagetest"
)

const manifest = `# Seashells manifest
id,pool,path,precache,volume_db,base,sub,sub2,tags

1001,A,/animals/farm/chicken.wav,1,-3,animals,farm,chicken,
1002,a,/animals/farm/cow.wav,0,0,animals,farm,cow,loud,low
,,,,,,,,
0,A,/reserved.wav,0,0,none,none,none,
5001,B,,0,-6,tones,simple,low_beep,
5101,B,,0,0,tones,sweep,up_short,
1101,A,/animals/jungle/birds.wav,1,x,animals,jungle,birds,
1102,A,/short.wav,1
`

func TestParse(t *testing.T) {
	m, err := Parse(strings.NewReader(manifest))
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 4 {
		t.Fatalf("expected 4 clips, got %d: %+v", m.Len(), m.Clips())
	}

	c, ok := m.Find(1001)
	expected := Clip{
		ID: 1001, Pool: PoolA, Path: "/animals/farm/chicken.wav",
		Precache: true, VolumeDB: -3,
		Base: "animals", Sub: "farm", Sub2: "chicken",
	}
	if !ok || c != expected {
		t.Errorf("expected %+v, got %+v (%v)", expected, c, ok)
	}

	c, ok = m.Find(1002)
	if !ok || c.Tags != "loud,low" || c.Precache {
		t.Errorf("expected cow with tags \"loud,low\", got %+v (%v)", c, ok)
	}

	c, ok = m.Find(5001)
	if !ok || c.Pool != PoolB || c.VolumeDB != -6 {
		t.Errorf("expected low beep in pool B at -6 dB, got %+v (%v)", c, ok)
	}

	skipped := map[uint16]string{
		0:    "id 0 is reserved",
		1101: "bad volume rows are skipped",
		1102: "short rows are skipped",
	}
	for id, why := range skipped {
		if _, ok := m.Find(id); ok {
			t.Errorf("%d found: %s", id, why)
		}
	}

	if a, b := m.CountPool(PoolA), m.CountPool(PoolB); a != 2 || b != 2 {
		t.Errorf("expected 2 clips per pool, got %d and %d", a, b)
	}

	pre := m.Precached()
	if len(pre) != 1 || pre[0].ID != 1001 {
		t.Errorf("expected only 1001 to be precached, got %+v", pre)
	}
}

func TestLoad(t *testing.T) {
	dev := storagetest.New()
	dev.Add(DefaultPath, []byte(manifest))

	m, err := Load(dev, DefaultPath)
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 4 {
		t.Errorf("expected 4 clips, got %d", m.Len())
	}

	if _, err := Load(dev, "/missing.csv"); err == nil {
		t.Error("expected an error for a missing manifest")
	}
}

func TestPick(t *testing.T) {
	var clips []Clip
	for i := 1; i <= 10; i++ {
		clips = append(clips, Clip{ID: uint16(1000 + i), Base: SameBase})
		clips = append(clips, Clip{ID: uint16(5000 + i), Base: "tones", Pool: PoolB})
	}
	m := New(clips, WithSeed(7))

	ids := m.PickByBase("ANIMALS", 4)
	if len(ids) != 4 {
		t.Fatalf("expected 4 ids, got %v", ids)
	}
	seen := map[uint16]bool{}
	for _, id := range ids {
		if id <= 1000 || id > 1010 {
			t.Errorf("unexpected id %d", id)
		}
		if seen[id] {
			t.Errorf("duplicate id %d", id)
		}
		seen[id] = true
	}

	ids = m.PickByBaseNot(SameBase, 3)
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %v", ids)
	}
	for _, id := range ids {
		if id <= 5000 {
			t.Errorf("unexpected id %d", id)
		}
	}

	if ids := m.PickByBaseNot(SameBase, 20); len(ids) != 10 {
		t.Errorf("cannot pick more than exist, got %d ids", len(ids))
	}
	if ids := m.PickByBase(SameBase, 0); ids != nil {
		t.Errorf("expected nil for no picks, got %v", ids)
	}
	if ids := m.PickByBase("vehicles", 2); len(ids) != 0 {
		t.Errorf("expected no vehicles, got %v", ids)
	}

	// A seed makes picks reproducible.
	a := New(clips, WithSeed(7)).PickByBase(SameBase, 4)
	b := New(clips, WithSeed(7)).PickByBase(SameBase, 4)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("picks differ for one seed: %v and %v", a, b)
	}
}

func TestManifestIsPicker(t *testing.T) {
	var _ Picker = New(nil)
}
