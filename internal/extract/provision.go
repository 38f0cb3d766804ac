package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/obslint/obslint/internal/domain"
	"github.com/obslint/obslint/internal/store"
)

type provisioningFile struct {
	Datasources []struct {
		Name string `yaml:"name"`
		Type string `yaml:"type"`
		UID  string `yaml:"uid"`
	} `yaml:"datasources"`
}

// ProvisioningExtractor reads datasource provisioning configuration and
// records the set of datasource UIDs that actually exist.
type ProvisioningExtractor struct {
	File   string
	Logger *zap.Logger
}

func (e *ProvisioningExtractor) Name() string { return "datasource-provisioning" }

func (e *ProvisioningExtractor) Extract(root string, b *store.Builder) error {
	path := filepath.Join(root, e.File)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		e.Logger.Info("skip: provisioning file not found", zap.String("file", e.File))
		return nil
	}
	if err != nil {
		return err
	}
	var pf provisioningFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("provisioning %s: %w", e.File, err)
	}
	for _, ds := range pf.Datasources {
		b.AddDatasource(domain.DatasourceDefinition{Name: ds.Name, Type: ds.Type, UID: ds.UID})
	}
	e.Logger.Debug("provisioning scan complete", zap.Int("datasources", len(pf.Datasources)))
	return nil
}
