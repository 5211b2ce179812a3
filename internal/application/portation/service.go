package portation

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	appinv "github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

// Service lee y escribe libros y delega en el importador y el exportador.
type Service struct {
	importer *Importer
	exporter *Exporter
	book     Spreadsheet
	log      zerolog.Logger
}

// NewService construye el servicio de importación y exportación.
func NewService(tx repository.TxRunner, reader repository.UnitOfWork, engine *appinv.Engine,
	book Spreadsheet, log zerolog.Logger,
) *Service {
	return &Service{
		importer: NewImporter(tx, engine, log),
		exporter: NewExporter(reader),
		book:     book,
		log:      log,
	}
}

// Import lee la primera hoja de r y la importa como kind.
func (s *Service) Import(ctx context.Context, kind Kind, r io.Reader, update bool) (*dto.ImportReport, error) {
	if kind == KindMovements {
		return nil, domain.Invalid(domain.ErrInvalidInput, "kind", "los movimientos solo se exportan")
	}
	t, err := s.book.ReadTable(r)
	if err != nil {
		return nil, err
	}
	return s.importer.Import(ctx, kind, t, update)
}

// Export escribe el libro de kind en w. day solo aplica a los movimientos; las ventas
// se exportan completas.
func (s *Service) Export(ctx context.Context, kind Kind, w io.Writer, day time.Time) error {
	var (
		sheets []Sheet
		err    error
	)
	switch kind {
	case KindCustomers:
		sheets, err = s.exporter.Customers(ctx)
	case KindSales:
		sheets, err = s.exporter.Sales(ctx, repository.DateRange{})
	case KindCatalog:
		sheets, err = s.exporter.Catalog(ctx)
	case KindMovements:
		sheets, err = s.exporter.DailyMovements(ctx, day)
	default:
		return domain.Invalid(domain.ErrInvalidInput, "kind", "tipo de exportación desconocido: "+string(kind))
	}
	if err != nil {
		return fmt.Errorf("exportar %s: %w", kind.Label(), err)
	}
	if err := s.book.WriteWorkbook(w, sheets); err != nil {
		return fmt.Errorf("escribir libro: %w", err)
	}
	rows := 0
	for _, sh := range sheets {
		rows += len(sh.Rows)
	}
	s.log.Info().Str("kind", string(kind)).Int("rows", rows).Msg("exportación generada")
	return nil
}

// FileName nombre sugerido del archivo exportado.
func FileName(kind Kind, day time.Time) string {
	switch kind {
	case KindCustomers:
		return "clientes.xlsx"
	case KindSales:
		return "ventas.xlsx"
	case KindCatalog:
		return "productos.xlsx"
	default:
		return "movimientos-" + day.Format("2006-01-02") + ".xlsx"
	}
}
