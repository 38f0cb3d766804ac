package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/obslint/obslint/internal/domain"
	"github.com/obslint/obslint/internal/store"
)

// manifest is the outer Kubernetes-style document. The collection config
// itself is embedded as a string value inside the data map.
type manifest struct {
	Kind string            `yaml:"kind"`
	Data map[string]string `yaml:"data"`
}

// scrapeFile is the embedded collection config, shared between the log
// pipeline (promtail-style, with pipeline_stages) and the metrics scrape
// config (prometheus-style).
type scrapeFile struct {
	ScrapeConfigs []scrapeConfig `yaml:"scrape_configs"`
}

type scrapeConfig struct {
	JobName        string          `yaml:"job_name"`
	KubernetesSD   []yaml.Node     `yaml:"kubernetes_sd_configs"`
	RelabelConfigs []relabelConfig `yaml:"relabel_configs"`
	PipelineStages []pipelineStage `yaml:"pipeline_stages"`
}

type relabelConfig struct {
	Action      string `yaml:"action"`
	TargetLabel string `yaml:"target_label"`
}

type pipelineStage struct {
	Labels map[string]*string `yaml:"labels"`
}

// implicitInfraLabels are produced by Kubernetes service discovery without
// any explicit relabel rule.
var implicitInfraLabels = []string{"namespace", "pod", "node", "container", "service", "endpoint"}

// PipelineExtractor reads deployment manifests and derives the label sets
// the collection pipeline actually produces: LogLabel entities from
// pipeline configs that carry pipeline_stages, and the infrastructure label
// set from metrics scrape configs.
type PipelineExtractor struct {
	Dir    string
	Logger *zap.Logger
}

func (e *PipelineExtractor) Name() string { return "pipeline-config" }

func (e *PipelineExtractor) Extract(root string, b *store.Builder) error {
	files, present, err := listFiles(root, e.Dir, ".yaml")
	if err != nil {
		return err
	}
	if !present {
		e.Logger.Info("skip: manifests directory not found", zap.String("dir", e.Dir))
		return nil
	}
	logLabels := map[string]bool{}
	infraLabels := map[string]bool{}
	for _, file := range files {
		if err := e.scanManifest(filepath.Join(root, file), file, logLabels, infraLabels); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(logLabels) {
		b.AddLogLabel(domain.LogLabel{Name: name})
	}
	for _, name := range sortedKeys(infraLabels) {
		b.AddInfraLabel(name)
	}
	e.Logger.Debug("pipeline scan complete",
		zap.Int("files", len(files)),
		zap.Int("log_labels", len(logLabels)),
		zap.Int("infra_labels", len(infraLabels)))
	return nil
}

// scanManifest walks every document in a multi-document manifest and every
// embedded config found in a data map.
func (e *PipelineExtractor) scanManifest(path, file string, logLabels, infraLabels map[string]bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var m manifest
		if err := dec.Decode(&m); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("manifest %s: %w", file, err)
		}
		for _, key := range sortedDataKeys(m.Data) {
			embedded := m.Data[key]
			var sf scrapeFile
			if err := yaml.Unmarshal([]byte(embedded), &sf); err != nil {
				// Data values that are not YAML documents (certs, scripts)
				// are legitimate manifest content, not collection config.
				continue
			}
			collectLabels(sf, logLabels, infraLabels)
		}
	}
}

// collectLabels applies the scrape-config walk. Configs carrying
// pipeline_stages are log pipelines; their replace targets and stage label
// keys become valid log labels. Configs without stages are metrics scrape
// jobs; their replace targets, plus the implicit service-discovery labels,
// become the produced infrastructure label set.
func collectLabels(sf scrapeFile, logLabels, infraLabels map[string]bool) {
	for _, sc := range sf.ScrapeConfigs {
		isLogPipeline := len(sc.PipelineStages) > 0
		dest := infraLabels
		if isLogPipeline {
			dest = logLabels
		}
		for _, rc := range sc.RelabelConfigs {
			if rc.Action != "replace" || rc.TargetLabel == "" {
				continue
			}
			if strings.HasPrefix(rc.TargetLabel, "__") {
				continue
			}
			dest[rc.TargetLabel] = true
		}
		for _, stage := range sc.PipelineStages {
			for name := range stage.Labels {
				logLabels[name] = true
			}
		}
		if !isLogPipeline && len(sc.KubernetesSD) > 0 {
			for _, name := range implicitInfraLabels {
				infraLabels[name] = true
			}
		}
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedDataKeys(data map[string]string) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
