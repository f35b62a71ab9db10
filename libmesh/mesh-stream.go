package libmesh

import (
	"fmt"
	"io"
	"strings"
)

// MeshAdder accepts meshes pulled from a MeshStream (e.g. a catalog).
type MeshAdder interface {
	TryAddMesh(M *Mesh) bool
	Close() error
}

type AddMeshOpts struct {
	AutoClose bool
}

// MeshStream is a channel of meshes that stages can be chained onto.
type MeshStream struct {
	Outlet chan *Mesh
}

func NewMeshStream() *MeshStream {
	return &MeshStream{
		Outlet: make(chan *Mesh),
	}
}

// StreamMeshes returns a stream that emits the given meshes and then closes.
func StreamMeshes(meshes ...*Mesh) *MeshStream {
	next := &MeshStream{
		Outlet: make(chan *Mesh, len(meshes)),
	}
	for _, M := range meshes {
		next.Outlet <- M
	}
	next.Close()
	return next
}

func (stream *MeshStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

func (stream *MeshStream) PushMesh(M *Mesh) {
	stream.Outlet <- M
}

func (stream *MeshStream) PullMesh() *Mesh {
	M := <-stream.Outlet
	return M
}

// PullAll drains the stream and returns how many meshes it carried.
func (stream *MeshStream) PullAll() int {
	count := 0
	for range stream.Outlet {
		count++
	}
	return count
}

// Print writes each mesh to out as it passes through.  out is closed when the stream ends.
func (stream *MeshStream) Print(out io.WriteCloser, opts PrintOpts) *MeshStream {
	next := &MeshStream{
		Outlet: make(chan *Mesh, 1),
	}

	go func() {
		buf := strings.Builder{}
		buf.Grow(256)

		count := 0
		for M := range stream.Outlet {
			count++
			fmt.Fprintf(&buf, "%06d,", count)
			M.WriteAsString(&buf, opts)
			out.Write([]byte(buf.String()))
			buf.Reset()
			next.Outlet <- M
		}
		out.Close()
		next.Close()
	}()

	return next
}

// AddTo offers each mesh to target, passing along those it accepts.
func (stream *MeshStream) AddTo(target MeshAdder, opts AddMeshOpts) *MeshStream {
	next := &MeshStream{
		Outlet: make(chan *Mesh, 1),
	}

	go func() {
		for M := range stream.Outlet {
			if target.TryAddMesh(M) {
				next.Outlet <- M
			}
		}
		if opts.AutoClose {
			target.Close()
		}
		next.Close()
	}()

	return next
}

// Select passes along the meshes accepted by sel.
func (stream *MeshStream) Select(sel func(M *Mesh) bool) *MeshStream {
	next := &MeshStream{
		Outlet: make(chan *Mesh, 1),
	}

	go func() {
		for M := range stream.Outlet {
			if sel(M) {
				next.Outlet <- M
			}
		}
		next.Close()
	}()

	return next
}
