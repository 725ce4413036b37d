package task

// hub.go is the single owner of every inter-thread channel (spec.md
// §4.J): the interactive thread, the compute pool, and the async I/O
// runtime all hand off results through named, bounded Channel[T]
// instances here rather than reaching for ad hoc globals.

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Voskan/voxelcore/pkg/chunk"
)

// Default channel capacities, matching the per-kind figures spec.md
// §4.J calls typical.
const (
	CapacityMeshResults       = 256
	CapacityChunkGenResults   = 128
	CapacityGPUUploadRequests = 64
	CapacityNetworkInbound    = 512
	CapacityNetworkOutbound   = 512
)

// ChunkGenResult is the outcome of a generation or disk-load task,
// handed from the compute pool or async I/O runtime back to the
// interactive thread.
type ChunkGenResult struct {
	Addr  chunk.Address
	Chunk *chunk.Chunk
	Err   error
	Frame uint64
}

// MeshResult carries an opaque built mesh buffer back to the
// interactive thread for GPU upload. The buffer layout itself belongs
// to the rendering pipeline, out of scope here (spec.md Non-goals);
// this type only describes the handoff.
type MeshResult struct {
	Addr  chunk.Address
	Data  []byte
	Frame uint64
}

// GPUUploadRequest asks the interactive thread to push mesh data to the
// GPU. Submission and device specifics are out of scope; this is the
// queue entry that crosses the thread boundary.
type GPUUploadRequest struct {
	Addr chunk.Address
	Data []byte
}

// NetworkMessage is an opaque payload moving between the async I/O
// runtime and the rest of the system. Wire framing belongs to the
// networking layer, out of scope here.
type NetworkMessage struct {
	Addr    chunk.Address
	Payload []byte
}

// Hub bundles every named channel used in this module's pipeline.
type Hub struct {
	MeshResults       *Channel[MeshResult]
	ChunkGenResults   *Channel[ChunkGenResult]
	GPUUploadRequests *Channel[GPUUploadRequest]
	NetworkInbound    *Channel[NetworkMessage]
	NetworkOutbound   *Channel[NetworkMessage]
}

// NewHub builds a Hub with the default capacities. reg is optional; when
// non-nil, every channel's drop counter is exported under
// voxelcore_hub_dropped_total{channel="..."}.
func NewHub(logger *zap.Logger, reg *prometheus.Registry) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := newHubMetricsSink(reg)

	h := &Hub{
		MeshResults:       NewChannel[MeshResult]("mesh-results", CapacityMeshResults, logger),
		ChunkGenResults:   NewChannel[ChunkGenResult]("chunk-generation-results", CapacityChunkGenResults, logger),
		GPUUploadRequests: NewChannel[GPUUploadRequest]("gpu-upload-requests", CapacityGPUUploadRequests, logger),
		NetworkInbound:    NewChannel[NetworkMessage]("network-inbound", CapacityNetworkInbound, logger),
		NetworkOutbound:   NewChannel[NetworkMessage]("network-outbound", CapacityNetworkOutbound, logger),
	}
	h.MeshResults.metrics = metrics
	h.ChunkGenResults.metrics = metrics
	h.GPUUploadRequests.metrics = metrics
	h.NetworkInbound.metrics = metrics
	h.NetworkOutbound.metrics = metrics
	return h
}

// DrainedFrame bundles the results of draining every channel once, at
// the start of a tick.
type DrainedFrame struct {
	MeshResults       []MeshResult
	ChunkGenResults   []ChunkGenResult
	GPUUploadRequests []GPUUploadRequest
	NetworkInbound    []NetworkMessage
	NetworkOutbound   []NetworkMessage
}

// DrainAll drains every channel in the hub exactly once, never
// blocking. Intended to run once per tick on the interactive thread.
func (h *Hub) DrainAll() DrainedFrame {
	return DrainedFrame{
		MeshResults:       h.MeshResults.Drain(),
		ChunkGenResults:   h.ChunkGenResults.Drain(),
		GPUUploadRequests: h.GPUUploadRequests.Drain(),
		NetworkInbound:    h.NetworkInbound.Drain(),
		NetworkOutbound:   h.NetworkOutbound.Drain(),
	}
}
