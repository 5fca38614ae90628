// Package discovery finds domains to check from cert-manager Certificate
// resources in a Kubernetes cluster.
package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"

	cmapi "github.com/cert-manager/cert-manager/pkg/apis/certmanager/v1"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/certwatch-app/certcheck/internal/checker"
)

var scheme = runtime.NewScheme()

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(cmapi.AddToScheme(scheme))
}

// Scheme returns the runtime scheme with cert-manager types registered
func Scheme() *runtime.Scheme {
	return scheme
}

// CertManagerSource lists the DNS names of cert-manager Certificates
type CertManagerSource struct {
	reader     client.Reader
	logger     *zap.Logger
	namespaces []string
}

// NewCertManagerSource creates a source reading Certificates through reader.
// An empty namespaces list covers the whole cluster.
func NewCertManagerSource(reader client.Reader, namespaces []string, logger *zap.Logger) *CertManagerSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertManagerSource{
		reader:     reader,
		namespaces: namespaces,
		logger:     logger,
	}
}

// NewInClusterSource creates a source using the kubeconfig or in-cluster
// service account of the current process.
func NewInClusterSource(namespaces []string, logger *zap.Logger) (*CertManagerSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Set up controller-runtime logger to use zap
	log.SetLogger(zapr.NewLogger(logger))

	cfg, err := ctrl.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubernetes config: %w", err)
	}

	c, err := client.New(cfg, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return NewCertManagerSource(c, namespaces, logger), nil
}

// Domains returns the sorted, de-duplicated DNS names requested by
// Certificates. Wildcards and names that are not valid host names are
// skipped since there is no single host to connect to.
func (s *CertManagerSource) Domains(ctx context.Context) ([]string, error) {
	certs, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for i := range certs {
		cert := &certs[i]
		for _, name := range namesOf(cert) {
			name = strings.ToLower(strings.TrimSuffix(name, "."))
			if seen[name] {
				continue
			}
			if strings.HasPrefix(name, "*.") {
				s.logger.Debug("skipping wildcard name",
					zap.String("namespace", cert.Namespace),
					zap.String("certificate", cert.Name),
					zap.String("name", name),
				)
				continue
			}
			if err := checker.ValidateDomain(name); err != nil {
				s.logger.Debug("skipping invalid name",
					zap.String("namespace", cert.Namespace),
					zap.String("certificate", cert.Name),
					zap.Error(err),
				)
				continue
			}
			seen[name] = true
		}
	}

	domains := make([]string, 0, len(seen))
	for name := range seen {
		domains = append(domains, name)
	}
	sort.Strings(domains)

	s.logger.Debug("discovered domains",
		zap.Int("certificates", len(certs)),
		zap.Int("domains", len(domains)),
	)

	return domains, nil
}

func (s *CertManagerSource) list(ctx context.Context) ([]cmapi.Certificate, error) {
	if len(s.namespaces) == 0 {
		var list cmapi.CertificateList
		if err := s.reader.List(ctx, &list); err != nil {
			return nil, fmt.Errorf("failed to list certificates: %w", err)
		}
		return list.Items, nil
	}

	var certs []cmapi.Certificate
	for _, ns := range s.namespaces {
		var list cmapi.CertificateList
		if err := s.reader.List(ctx, &list, client.InNamespace(ns)); err != nil {
			return nil, fmt.Errorf("failed to list certificates in %s: %w", ns, err)
		}
		certs = append(certs, list.Items...)
	}
	return certs, nil
}

func namesOf(cert *cmapi.Certificate) []string {
	names := make([]string, 0, len(cert.Spec.DNSNames)+1)
	if cert.Spec.CommonName != "" {
		names = append(names, cert.Spec.CommonName)
	}
	return append(names, cert.Spec.DNSNames...)
}
