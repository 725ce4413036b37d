package task

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestChannelTrySendDropsWhenFull(t *testing.T) {
	c := NewChannel[int]("test", 2, nil)
	if !c.TrySend(1) || !c.TrySend(2) {
		t.Fatalf("first two sends into a capacity-2 channel should succeed")
	}
	if c.TrySend(3) {
		t.Fatalf("third send into a full channel should be dropped")
	}
	if c.Dropped() != 1 {
		t.Fatalf("Dropped() = %d, want 1", c.Dropped())
	}
}

func TestChannelDrainReturnsAllBuffered(t *testing.T) {
	c := NewChannel[int]("test", 4, nil)
	c.TrySend(1)
	c.TrySend(2)
	c.TrySend(3)

	got := c.Drain()
	if len(got) != 3 {
		t.Fatalf("Drain() returned %d values, want 3", len(got))
	}
	if len(c.Drain()) != 0 {
		t.Fatalf("second Drain() should return nothing")
	}
}

func TestHubDrainAll(t *testing.T) {
	h := NewHub(nil, nil)
	h.ChunkGenResults.TrySend(ChunkGenResult{})
	h.MeshResults.TrySend(MeshResult{})

	frame := h.DrainAll()
	if len(frame.ChunkGenResults) != 1 {
		t.Fatalf("DrainAll().ChunkGenResults = %v, want 1 entry", frame.ChunkGenResults)
	}
	if len(frame.MeshResults) != 1 {
		t.Fatalf("DrainAll().MeshResults = %v, want 1 entry", frame.MeshResults)
	}
	if len(frame.NetworkInbound) != 0 {
		t.Fatalf("DrainAll().NetworkInbound should be empty")
	}
}

func TestHubReportsDroppedMetric(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewHub(nil, reg)

	for i := 0; i < CapacityGPUUploadRequests+5; i++ {
		h.GPUUploadRequests.TrySend(GPUUploadRequest{})
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var found *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "voxelcore_hub_dropped_total" {
			found = f
		}
	}
	if found == nil {
		t.Fatalf("voxelcore_hub_dropped_total not registered")
	}
	if len(found.Metric) != 1 || found.Metric[0].Counter.GetValue() != 5 {
		t.Fatalf("dropped_total metrics = %+v, want a single series with value 5", found.Metric)
	}
}
