package portation

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/domain"
)

// Estados de un trabajo de importación.
const (
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

// DefaultJobHistory trabajos que el Worker recuerda por defecto.
const DefaultJobHistory = 20

// Worker ejecuta una importación a la vez en segundo plano. Mientras corre, cualquier
// otro envío se rechaza con domain.ErrImportInProgress. Solo recuerda los últimos
// trabajos enviados; los más viejos se olvidan.
type Worker struct {
	svc     *Service
	log     zerolog.Logger
	history int

	mu      sync.Mutex
	running bool
	jobs    map[string]*dto.ImportJobResponse
	order   []string // ids en orden de envío
}

// WorkerOption configura un Worker.
type WorkerOption func(*Worker)

// WithJobHistory fija cuántos trabajos se recuerdan (mínimo 1).
func WithJobHistory(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.history = n
		}
	}
}

// NewWorker construye el trabajador de importación.
func NewWorker(svc *Service, log zerolog.Logger, opts ...WorkerOption) *Worker {
	w := &Worker{svc: svc, log: log, history: DefaultJobHistory, jobs: map[string]*dto.ImportJobResponse{}}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Submit inicia la importación de data. El canal devuelto recibe exactamente un resultado
// y luego se cierra.
func (w *Worker) Submit(kind Kind, data []byte, update bool) (string, <-chan dto.ImportJobResponse, error) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return "", nil, domain.ErrImportInProgress
	}
	id := uuid.NewString()
	w.running = true
	w.jobs[id] = &dto.ImportJobResponse{JobID: id, Kind: string(kind), Status: JobRunning}
	w.order = append(w.order, id)
	// el único trabajo en curso es el recién agregado, así que los más viejos ya terminaron
	for len(w.order) > w.history {
		delete(w.jobs, w.order[0])
		w.order = w.order[1:]
	}
	w.mu.Unlock()

	done := make(chan dto.ImportJobResponse, 1)
	go func() {
		defer close(done)
		// La importación no se cancela una vez iniciada.
		report, err := w.svc.Import(context.Background(), kind, bytes.NewReader(data), update)

		w.mu.Lock()
		job := w.jobs[id]
		if err != nil {
			job.Status, job.Error = JobFailed, err.Error()
			w.log.Error().Err(err).Str("job_id", id).Str("kind", string(kind)).Msg("importación fallida")
		} else {
			job.Status, job.Report = JobDone, report
		}
		result := *job
		w.running = false
		w.mu.Unlock()

		done <- result
	}()
	w.log.Info().Str("job_id", id).Str("kind", string(kind)).Int("bytes", len(data)).Msg("importación iniciada")
	return id, done, nil
}

// Job estado del trabajo id.
func (w *Worker) Job(id string) (dto.ImportJobResponse, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	job, ok := w.jobs[id]
	if !ok {
		return dto.ImportJobResponse{}, false
	}
	return *job, true
}

// Busy indica si hay una importación en curso.
func (w *Worker) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
