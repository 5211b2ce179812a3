// catalogo importa y exporta libros .xlsx contra la base local sin levantar la API.
//
// Uso:
//
//	catalogo import <customers|sales|catalog> <archivo.xlsx> [-update]
//	catalogo export <customers|sales|catalog|movements> <archivo.xlsx> [-day YYYY-MM-DD]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/application/portation"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/persistence"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/inventario-pos/pkg/config"
	"github.com/jhoicas/inventario-pos/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	if err := run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "catalogo: %v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "uso:")
	fmt.Fprintln(w, "  catalogo import <customers|sales|catalog> <archivo.xlsx> [-update]")
	fmt.Fprintln(w, "  catalogo export <customers|sales|catalog|movements> <archivo.xlsx> [-day YYYY-MM-DD]")
}

func run(ctx context.Context, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	update := fs.Bool("update", false, "actualiza productos existentes (solo catálogo)")
	day := fs.String("day", "", "día de los movimientos a exportar (YYYY-MM-DD)")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 2 {
		usage(os.Stderr)
		return fmt.Errorf("se esperaban <entidad> y <archivo>")
	}
	kind, ok := portation.ParseKind(pos[0])
	if !ok {
		return fmt.Errorf("entidad desconocida %q", pos[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})
	store, err := persistence.Open(ctx, cfg.Store, log.Component("store"))
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	svc := portation.NewService(store, store, inventory.NewEngine(inventory.NewLedger()), spreadsheet.New(), log.Component("portation"))

	switch cmd {
	case "import":
		return runImport(ctx, svc, kind, pos[1], *update)
	case "export":
		when := time.Now()
		if *day != "" {
			when, err = time.ParseInLocation("2006-01-02", *day, time.Local)
			if err != nil {
				return fmt.Errorf("-day debe tener formato YYYY-MM-DD")
			}
		}
		return runExport(ctx, svc, kind, pos[1], when)
	default:
		usage(os.Stderr)
		return fmt.Errorf("comando desconocido %q", cmd)
	}
}

// parseArgs admite flags antes o después de los argumentos posicionales.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return pos, nil
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
}

func runImport(ctx context.Context, svc *portation.Service, kind portation.Kind, path string, update bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	report, err := svc.Import(ctx, kind, f, update)
	if err != nil {
		return err
	}
	printReport(os.Stdout, report)
	return nil
}

func runExport(ctx context.Context, svc *portation.Service, kind portation.Kind, path string, day time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := svc.Export(ctx, kind, f, day); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("%s exportado a %s\n", kind.Label(), path)
	return nil
}

func printReport(w io.Writer, r *dto.ImportReport) {
	fmt.Fprintf(w, "%s: %d filas, %d importadas, %d actualizadas, %d omitidas, %d con error\n",
		r.Kind, r.Total, r.Imported, r.Updated, len(r.Skipped), len(r.Failed))
	for _, s := range r.Skipped {
		fmt.Fprintf(w, "  omitida fila %d %s: %s\n", s.Row, s.Key, s.Reason)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(w, "  error fila %d %s: %s\n", f.Row, f.Key, f.Reason)
	}
}
