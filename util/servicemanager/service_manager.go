// Package servicemanager runs long-lived services: it initialises them in order, starts
// each one once the previous one reported ready, and stops them in reverse order when the
// process receives SIGINT/SIGTERM or a service fails.
package servicemanager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/ulogger"
	"golang.org/x/sync/errgroup"
)

// Service is implemented by everything the manager runs.
type Service interface {
	Health(ctx context.Context, checkLiveness bool) (int, string, error)
	Init(ctx context.Context) error

	// Start blocks until ctx is done or the service fails. It closes readyCh once the
	// service accepts work.
	Start(ctx context.Context, readyCh chan<- struct{}) error
	Stop(ctx context.Context) error
}

type serviceWrapper struct {
	name     string
	instance Service
	readyCh  chan struct{}
}

var (
	mu        sync.RWMutex
	listeners []string
)

type ServiceManager struct {
	services     []serviceWrapper
	logger       ulogger.Logger
	Ctx          context.Context
	cancelFunc   context.CancelFunc
	g            *errgroup.Group
	readyTimeout time.Duration
}

func NewServiceManager(ctx context.Context, logger ulogger.Logger) *ServiceManager {
	ctx, cancelFunc := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	sm := &ServiceManager{
		logger:       logger,
		Ctx:          ctx,
		cancelFunc:   cancelFunc,
		g:            g,
		readyTimeout: 10 * time.Second,
	}

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

		defer signal.Stop(sigs)

		select {
		case <-sigs:
			sm.logger.Infof("[ServiceManager] received shutdown signal, stopping services")
			sm.cancelFunc()
		case <-ctx.Done():
		}
	}()

	return sm
}

// AddListenerInfo records a human readable description of an open listener.
func AddListenerInfo(name string) {
	mu.Lock()
	defer mu.Unlock()

	listeners = append(listeners, name)
}

// GetListenerInfos returns the recorded listeners, sorted.
func GetListenerInfos() []string {
	mu.RLock()
	defer mu.RUnlock()

	sorted := make([]string, len(listeners))
	copy(sorted, listeners)
	sort.Strings(sorted)

	return sorted
}

// AddService initialises service and schedules its start. The service is started after
// the previously added service signalled ready.
func (sm *ServiceManager) AddService(name string, service Service) error {
	var previous chan struct{}
	if len(sm.services) > 0 {
		previous = sm.services[len(sm.services)-1].readyCh
	}

	sw := serviceWrapper{
		name:     name,
		instance: service,
		readyCh:  make(chan struct{}),
	}

	sm.services = append(sm.services, sw)

	sm.logger.Infof("[ServiceManager] initializing service %s", name)

	if err := service.Init(sm.Ctx); err != nil {
		return errors.NewServiceError("failed to initialize service %s", name, err)
	}

	sm.g.Go(func() error {
		if previous != nil {
			if err := sm.waitForReady(sm.Ctx, name, previous); err != nil {
				return err
			}
		}

		sm.logger.Infof("[ServiceManager] starting service %s", name)

		if err := service.Start(sm.Ctx, sw.readyCh); err != nil {
			sm.logger.Errorf("[ServiceManager] service %s failed: %v", name, err)
			return err
		}

		return nil
	})

	return nil
}

func (sm *ServiceManager) waitForReady(ctx context.Context, name string, readyCh <-chan struct{}) error {
	timer := time.NewTimer(sm.readyTimeout)
	defer timer.Stop()

	select {
	case <-readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errors.NewServiceError("%s timed out waiting for the previous service to become ready", name)
	}
}

// WaitForServiceToBeReady blocks until every added service signalled ready or ctx is done.
func (sm *ServiceManager) WaitForServiceToBeReady(ctx context.Context) error {
	for _, service := range sm.services {
		select {
		case <-service.readyCh:
			sm.logger.Infof("[ServiceManager] service %s is ready", service.name)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// ForceShutdown cancels the context every service runs with.
func (sm *ServiceManager) ForceShutdown() {
	sm.cancelFunc()
}

// Wait blocks until all services returned, then stops them in reverse order. A shutdown
// triggered by cancellation is not an error.
func (sm *ServiceManager) Wait() error {
	err := sm.g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		sm.logger.Errorf("[ServiceManager] received error: %v", err)
	}

	for i := len(sm.services) - 1; i >= 0; i-- {
		service := sm.services[i]

		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)

		sm.logger.Infof("[ServiceManager] stopping service %s", service.name)

		if stopErr := service.instance.Stop(stopCtx); stopErr != nil {
			sm.logger.Warnf("[ServiceManager] failed to stop service %s: %v", service.name, stopErr)
		}

		stopCancel()
	}

	sm.cancelFunc()

	sm.logger.Infof("[ServiceManager] all services stopped")

	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// HealthHandler aggregates the health of all services into one JSON document. The
// status is 503 as soon as one service is unhealthy.
func (sm *ServiceManager) HealthHandler(ctx context.Context, checkLiveness bool) (int, string, error) {
	overallStatus := http.StatusOK
	msgs := make([]string, 0, len(sm.services))

	for _, service := range sm.services {
		status, details, err := service.instance.Health(ctx, checkLiveness)
		if err != nil || status != http.StatusOK {
			overallStatus = http.StatusServiceUnavailable
		}

		if details == "" || details[0] != '{' {
			details = fmt.Sprintf("%q", details)
		}

		msgs = append(msgs, fmt.Sprintf(`{"service": "%s", "status": "%d", "details": %s}`, service.name, status, details))
	}

	jsonStr := fmt.Sprintf(`{"status": "%d", "services": [%s]}`, overallStatus, strings.Join(msgs, ","))

	var formatted bytes.Buffer
	if err := json.Indent(&formatted, []byte(jsonStr), "", "  "); err == nil {
		jsonStr = formatted.String()
	}

	return overallStatus, jsonStr, nil
}
