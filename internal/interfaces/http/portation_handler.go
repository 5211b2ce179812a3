package http

import (
	"bytes"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/application/portation"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PortationHandler importación y exportación de libros .xlsx.
type PortationHandler struct {
	svc    *portation.Service
	worker *portation.Worker
}

// NewPortationHandler construye el handler.
func NewPortationHandler(svc *portation.Service, worker *portation.Worker) *PortationHandler {
	return &PortationHandler{svc: svc, worker: worker}
}

// Import recibe el archivo (campo "file") y lo procesa en segundo plano.
// Con ?wait=true responde con el reporte al terminar.
// POST /api/imports/:kind?update=true&wait=true
func (h *PortationHandler) Import(c *fiber.Ctx) error {
	kind, err := pathKind(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "falta el archivo (campo file)")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	id, done, err := h.worker.Submit(kind, data, c.QueryBool("update"))
	if err != nil {
		return err
	}
	if !c.QueryBool("wait") {
		return c.Status(fiber.StatusAccepted).JSON(dto.ImportJobResponse{JobID: id, Kind: string(kind), Status: portation.JobRunning})
	}
	select {
	case out := <-done:
		return c.JSON(out)
	case <-c.UserContext().Done():
		return c.UserContext().Err()
	}
}

// Job estado de una importación.
// GET /api/imports/jobs/:id
func (h *PortationHandler) Job(c *fiber.Ctx) error {
	job, ok := h.worker.Job(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "trabajo no encontrado"})
	}
	return c.JSON(job)
}

// Export descarga el libro de la entidad. Los movimientos son los del día ?day=YYYY-MM-DD.
// GET /api/exports/:kind
func (h *PortationHandler) Export(c *fiber.Ctx) error {
	kind, err := pathKind(c)
	if err != nil {
		return err
	}
	day, err := queryDay(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := h.svc.Export(c.UserContext(), kind, &buf, day); err != nil {
		return err
	}
	c.Attachment(portation.FileName(kind, day))
	c.Set(fiber.HeaderContentType, mimeXLSX)
	return c.Send(buf.Bytes())
}

func pathKind(c *fiber.Ctx) (portation.Kind, error) {
	kind, ok := portation.ParseKind(c.Params("kind"))
	if !ok {
		return "", fiber.NewError(fiber.StatusBadRequest, "entidad desconocida: "+c.Params("kind"))
	}
	return kind, nil
}
