package main

import (
	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/fine-structures/fine-mesh/libmesh"
	"github.com/fine-structures/fine-mesh/libmesh/catalog"
	smfile "github.com/fine-structures/fine-mesh/libmesh/sm-file"
	"github.com/plan-systems/klog"
	"golang.org/x/sync/errgroup"
)

// importFiles parses the given .sm files concurrently, then stores them in the catalog at catalogDir in argument order.
func importFiles(configPath, catalogDir string, pathnames []string) error {
	cfg := go2mesh.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = go2mesh.LoadConfig(configPath); err != nil {
			return err
		}
	}

	meshes, err := readMeshes(cfg, pathnames)
	if err != nil {
		return err
	}

	cat, err := catalog.Open(catalog.Opts{
		DbPathName: catalogDir,
		MeshConfig: cfg,
	})
	if err != nil {
		return err
	}

	added := libmesh.StreamMeshes(meshes...).
		AddTo(cat, libmesh.AddMeshOpts{}).
		Select(func(M *libmesh.Mesh) bool {
			klog.V(1).Infof("imported %q: %d verts, %d faces", M.Name(), M.NumVerts(), M.NumFaces())
			return true
		}).
		PullAll()

	klog.Infof("imported %d of %d meshes into %q (%d total)", added, len(meshes), catalogDir, cat.NumMeshes())
	return cat.Close()
}

func readMeshes(cfg go2mesh.Config, pathnames []string) ([]*libmesh.Mesh, error) {
	meshes := make([]*libmesh.Mesh, len(pathnames))

	var group errgroup.Group
	group.SetLimit(8)
	for i, pathname := range pathnames {
		i, pathname := i, pathname
		group.Go(func() error {
			M, err := smfile.ReadFile(pathname, cfg)
			if err != nil {
				return err
			}
			meshes[i] = M
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return meshes, nil
}
