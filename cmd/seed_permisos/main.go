// seed_permisos genera SQL para cargar una matriz de permisos por rol desde CSV.
//
// Formato: rol;recurso;accion[;descripcion] (la primera fila puede ser encabezado).
// Las planillas exportadas desde Excel en español suelen venir en Windows-1252: usar -latin1.
//
// Uso: go run ./cmd/seed_permisos [-latin1] [-o salida.sql] matriz.csv
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/agrotrack-api/internal/domain/permission"
)

// Acciones en que se expande un comodín ("*" o "gestionar").
var allActions = []string{"ver", "crear", "editar", "eliminar"}

type grant struct {
	role, resource, action, description string
}

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV viene en Windows-1252")
	outPath := flag.String("o", "", "archivo de salida (por defecto stdout)")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_permisos [-latin1] [-o salida.sql] matriz.csv")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	grants, err := readGrants(decode(f, *latin1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		file, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		out = file
	}
	if err := writeSQL(out, grants); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Generadas %d asignaciones\n", len(grants))
}

func decode(r io.Reader, latin1 bool) io.Reader {
	if latin1 {
		return transform.NewReader(r, charmap.Windows1252.NewDecoder())
	}
	return r
}

// readGrants lee y normaliza la matriz; los comodines de acción se expanden.
func readGrants(r io.Reader) ([]grant, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	seen := make(map[string]struct{})
	var grants []grant
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "rol") {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("línea %d: se esperan al menos 3 columnas", line)
		}
		role := strings.ToLower(strings.TrimSpace(rec[0]))
		resource := permission.Normalize(rec[1])
		action := permission.CanonicalAction(rec[2])
		if role == "" || resource == "" || action == "" {
			return nil, fmt.Errorf("línea %d: rol, recurso y acción son obligatorios", line)
		}
		desc := ""
		if len(rec) > 3 {
			desc = strings.TrimSpace(rec[3])
		}
		actions := []string{action}
		if action == permission.Wildcard {
			actions = allActions
		}
		for _, a := range actions {
			k := role + "|" + resource + ":" + a
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			grants = append(grants, grant{role: role, resource: resource, action: a, description: desc})
		}
	}
	return grants, nil
}

func writeSQL(w io.Writer, grants []grant) error {
	roles := make(map[string]struct{})
	perms := make(map[string]grant)
	for _, g := range grants {
		roles[g.role] = struct{}{}
		k := g.resource + ":" + g.action
		if _, ok := perms[k]; !ok {
			perms[k] = g
		}
	}
	roleNames := make([]string, 0, len(roles))
	for r := range roles {
		roleNames = append(roleNames, r)
	}
	sort.Strings(roleNames)
	permKeys := make([]string, 0, len(perms))
	for k := range perms {
		permKeys = append(permKeys, k)
	}
	sort.Strings(permKeys)

	var b strings.Builder
	b.WriteString("-- Matriz de permisos generada por seed_permisos\n\n")
	for _, r := range roleNames {
		fmt.Fprintf(&b, "INSERT INTO roles (nombre) VALUES ('%s') ON CONFLICT (nombre) DO NOTHING;\n", escapeSQL(r))
	}
	b.WriteString("\n")
	for _, k := range permKeys {
		g := perms[k]
		desc := g.description
		if desc == "" {
			desc = g.action + " " + strings.ReplaceAll(g.resource, "_", " ")
		}
		fmt.Fprintf(&b, "INSERT INTO permisos (recurso, accion, descripcion) VALUES ('%s', '%s', '%s') ON CONFLICT (recurso, accion) DO NOTHING;\n",
			escapeSQL(g.resource), escapeSQL(g.action), escapeSQL(desc))
	}
	b.WriteString("\n")
	for _, g := range grants {
		fmt.Fprintf(&b, "INSERT INTO rol_permisos (rol_id, permiso_id)\n")
		fmt.Fprintf(&b, "SELECT ro.id, p.id FROM roles ro, permisos p WHERE ro.nombre = '%s' AND p.recurso = '%s' AND p.accion = '%s'\n",
			escapeSQL(g.role), escapeSQL(g.resource), escapeSQL(g.action))
		b.WriteString("ON CONFLICT DO NOTHING;\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
