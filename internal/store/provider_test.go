package store

import (
	"context"
	"testing"

	"github.com/therealcain/SimplerWMI/internal/cim"
	"github.com/therealcain/SimplerWMI/internal/wbem"
	"github.com/therealcain/SimplerWMI/internal/wmi"
)

func seedProcessors(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	err := s.CreateClass(ctx, "Win32_Processor",
		wbem.PropertyDef{Name: "Name", Type: cim.TypeString},
		wbem.PropertyDef{Name: "Cores", Type: cim.TypeUInt32},
		wbem.PropertyDef{Name: "Load", Type: cim.TypeReal64},
		wbem.PropertyDef{Name: "Hyperthreaded", Type: cim.TypeBoolean},
		wbem.PropertyDef{Name: "Tags", Type: cim.TypeString | cim.FlagArray},
		wbem.PropertyDef{Name: "CacheKB", Type: cim.TypeUInt32 | cim.FlagArray},
	)
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}

	_, err = s.InsertInstance(ctx, "Win32_Processor", map[string]any{
		"Name":          "cpu0",
		"Cores":         uint32(8),
		"Load":          0.42,
		"Hyperthreaded": true,
		"Tags":          []string{"fast", "amd64"},
		"CacheKB":       []uint32{512, 1024},
	})
	if err != nil {
		t.Fatalf("InsertInstance() failed: %v", err)
	}

	// Second instance leaves most properties unset
	_, err = s.InsertInstance(ctx, "Win32_Processor", map[string]any{
		"Name": "cpu1",
	})
	if err != nil {
		t.Fatalf("InsertInstance() failed: %v", err)
	}
}

func TestProvider_QueryRoundTrip(t *testing.T) {
	s := openTestStore(t)
	seedProcessors(t, s)

	sess, err := s.Connect()
	if err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	client := wmi.NewClient(sess)
	defer client.Close()

	objs, err := client.Query("Win32_Processor")
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(objs) != 2 {
		t.Fatalf("got %d objects, want 2", len(objs))
	}

	first := objs[0]
	if name, ok := wmi.Property[string](first, "Name"); !ok || name != "cpu0" {
		t.Errorf("Name = %q, %v", name, ok)
	}
	if cores, ok := wmi.Property[uint32](first, "Cores"); !ok || cores != 8 {
		t.Errorf("Cores = %d, %v", cores, ok)
	}
	if load, ok := wmi.Property[float64](first, "Load"); !ok || load != 0.42 {
		t.Errorf("Load = %v, %v", load, ok)
	}
	if ht, ok := wmi.Property[bool](first, "Hyperthreaded"); !ok || !ht {
		t.Errorf("Hyperthreaded = %v, %v", ht, ok)
	}
	tags := wmi.Array[string](first, "Tags")
	if len(tags) != 2 || tags[0] != "fast" || tags[1] != "amd64" {
		t.Errorf("Tags = %v", tags)
	}
	cache := wmi.Array[uint32](first, "CacheKB")
	if len(cache) != 2 || cache[0] != 512 || cache[1] != 1024 {
		t.Errorf("CacheKB = %v", cache)
	}

	// Unset properties come back as the tag's zero value
	second := objs[1]
	if name, ok := wmi.Property[string](second, "Name"); !ok || name != "cpu1" {
		t.Errorf("Name = %q, %v", name, ok)
	}
	if cores, ok := wmi.Property[uint32](second, "Cores"); !ok || cores != 0 {
		t.Errorf("unset Cores = %d, %v, want 0 true", cores, ok)
	}
	if tags := wmi.Array[string](second, "Tags"); tags == nil || len(tags) != 0 {
		t.Errorf("unset Tags = %v, want empty non-nil", tags)
	}
}

func TestProvider_SelectedProperties(t *testing.T) {
	s := openTestStore(t)
	seedProcessors(t, s)

	sess, err := s.Connect()
	if err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	client := wmi.NewClient(sess)
	defer client.Close()

	objs, err := client.Query("Win32_Processor", "Cores", "Name")
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}

	names := objs[0].Names()
	if len(names) != 2 || names[0] != "Cores" || names[1] != "Name" {
		t.Errorf("Names() = %v, want requested order", names)
	}
}

func TestProvider_UnknownClass(t *testing.T) {
	s := openTestStore(t)

	sess, err := s.Connect()
	if err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer sess.Close()

	_, err = sess.ExecQuery("SELECT * FROM Win32_Ghost")
	if err == nil {
		t.Fatal("unknown class should fail")
	}
	if !wbem.HasCode(err, wbem.ErrCodeQueryFailed) {
		t.Errorf("error = %v, want code %s", err, wbem.ErrCodeQueryFailed)
	}
}

func TestProvider_UnknownProperty(t *testing.T) {
	s := openTestStore(t)
	seedProcessors(t, s)

	sess, err := s.Connect()
	if err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer sess.Close()

	_, err = sess.ExecQuery("SELECT Ghost FROM Win32_Processor")
	if err == nil {
		t.Fatal("unknown property should fail")
	}
	if !wbem.HasCode(err, wbem.ErrCodeQueryFailed) {
		t.Errorf("error = %v, want code %s", err, wbem.ErrCodeQueryFailed)
	}
}

func TestProvider_ClosedSession(t *testing.T) {
	s := openTestStore(t)
	seedProcessors(t, s)

	sess, err := s.Connect()
	if err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	sess.Close()

	if _, err := sess.ExecQuery("SELECT * FROM Win32_Processor"); err == nil {
		t.Error("query on a closed session should fail")
	}
}

func TestProvider_EmptyAndAbsentStrings(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.CreateClass(ctx, "C",
		wbem.PropertyDef{Name: "Empty", Type: cim.TypeString},
		wbem.PropertyDef{Name: "Unset", Type: cim.TypeString},
		wbem.PropertyDef{Name: "Slots", Type: cim.TypeString | cim.FlagArray},
	)
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	_, err = s.InsertInstance(ctx, "C", map[string]any{
		"Empty": "",
		"Slots": []*wbem.BStr{wbem.NewBStr("a"), nil, wbem.NewBStr("")},
	})
	if err != nil {
		t.Fatalf("InsertInstance() failed: %v", err)
	}

	sess, err := s.Connect()
	if err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	client := wmi.NewClient(sess)
	defer client.Close()

	objs, err := client.Query("C")
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	obj := objs[0]

	if v, ok := wmi.Property[string](obj, "Empty"); !ok || v != "" {
		t.Errorf("Empty = %q, %v", v, ok)
	}
	if v, ok := wmi.Property[string](obj, "Unset"); !ok || v != "" {
		t.Errorf("Unset = %q, %v", v, ok)
	}
	// Absent slots decode to "" like absent scalar handles do
	slots := wmi.Array[string](obj, "Slots")
	if len(slots) != 3 || slots[0] != "a" || slots[1] != "" || slots[2] != "" {
		t.Errorf("Slots = %v", slots)
	}
}
