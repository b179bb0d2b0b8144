package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/jcondori/biblioteca-api/internal/models"
	"github.com/jcondori/biblioteca-api/internal/repository"
	"github.com/jcondori/biblioteca-api/pkg/config"
	"github.com/jcondori/biblioteca-api/pkg/database"
)

func main() {
	root := &cobra.Command{
		Use:           "biblioctl",
		Short:         "Operator tooling for the library inventory service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(importCmd(), createAdminCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// importCmd bulk-loads catalog rows from a CSV file. Expected columns:
// tipo, codigo_nuevo, codigo_antiguo, titulo, autor, anio, facultad, estado,
// ubicacion_seccion, ubicacion_repisa, materia, editorial, edicion,
// modalidad, tutor, carrera.
func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "importar <archivo.csv>",
		Short: "Import catalog assets from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.NewPostgres(cfg.Database)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer db.Close()

			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			repo := repository.NewAssetRepository(db)
			reader := csv.NewReader(file)
			reader.FieldsPerRecord = -1

			header, err := reader.Read()
			if err != nil {
				return fmt.Errorf("read header: %w", err)
			}
			index := map[string]int{}
			for i, name := range header {
				index[strings.ToLower(strings.TrimSpace(name))] = i
			}
			for _, required := range []string{"tipo", "codigo_nuevo", "titulo"} {
				if _, ok := index[required]; !ok {
					return fmt.Errorf("missing column %q", required)
				}
			}

			field := func(record []string, name string) string {
				i, ok := index[name]
				if !ok || i >= len(record) {
					return ""
				}
				return strings.TrimSpace(record[i])
			}
			optional := func(record []string, name string) *string {
				if value := field(record, name); value != "" {
					return &value
				}
				return nil
			}

			ctx := context.Background()
			line, imported, skipped := 1, 0, 0
			for {
				record, err := reader.Read()
				if err == io.EOF {
					break
				}
				line++
				if err != nil {
					fmt.Fprintf(os.Stderr, "line %d: %v\n", line, err)
					skipped++
					continue
				}

				kind := models.AssetKind(strings.ToUpper(field(record, "tipo")))
				if kind != models.AssetKindBook && kind != models.AssetKindThesis {
					fmt.Fprintf(os.Stderr, "line %d: unknown tipo %q\n", line, field(record, "tipo"))
					skipped++
					continue
				}

				code := field(record, "codigo_nuevo")
				taken, err := repo.ExistsByCode(ctx, code, "")
				if err != nil {
					return fmt.Errorf("line %d: %w", line, err)
				}
				if taken {
					fmt.Fprintf(os.Stderr, "line %d: code %s already registered, skipping\n", line, code)
					skipped++
					continue
				}

				estado := models.AssetCondition(strings.ToUpper(field(record, "estado")))
				if estado == "" {
					estado = models.ConditionGood
				}

				asset := &models.Asset{
					Tipo:          kind,
					CodigoNuevo:   code,
					CodigoAntiguo: optional(record, "codigo_antiguo"),
					Titulo:        field(record, "titulo"),
					Autor:         optional(record, "autor"),
					Facultad:      optional(record, "facultad"),
					Estado:        estado,
					Seccion:       optional(record, "ubicacion_seccion"),
					Repisa:        optional(record, "ubicacion_repisa"),
					Materia:       optional(record, "materia"),
					Editorial:     optional(record, "editorial"),
					Edicion:       optional(record, "edicion"),
					Modalidad:     optional(record, "modalidad"),
					Tutor:         optional(record, "tutor"),
					Carrera:       optional(record, "carrera"),
				}
				if raw := field(record, "anio"); raw != "" {
					if year, err := strconv.Atoi(raw); err == nil {
						asset.Anio = &year
					}
				}

				if err := repo.Create(ctx, asset); err != nil {
					return fmt.Errorf("line %d: %w", line, err)
				}
				imported++
			}

			fmt.Printf("Imported %d assets, skipped %d rows\n", imported, skipped)
			return nil
		},
	}
	return cmd
}

// createAdminCmd interactively registers a staff account.
func createAdminCmd() *cobra.Command {
	var username, fullName, role string

	cmd := &cobra.Command{
		Use:   "crear-admin",
		Short: "Create a staff account with an interactively prompted password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(username) == "" {
				return fmt.Errorf("--username is required")
			}
			if strings.TrimSpace(fullName) == "" {
				fullName = username
			}
			userRole := models.UserRole(strings.ToUpper(role))
			if userRole != models.RoleAdmin && userRole != models.RoleBibliotecario {
				return fmt.Errorf("unknown role %q", role)
			}

			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			confirm, err := readPassword("Confirm password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.NewPostgres(cfg.Database)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer db.Close()

			repo := repository.NewUserRepository(db)
			user := &models.User{
				Username:     strings.TrimSpace(username),
				PasswordHash: string(hash),
				FullName:     strings.TrimSpace(fullName),
				Role:         userRole,
				Active:       true,
			}
			if err := repo.Create(context.Background(), user); err != nil {
				return err
			}

			fmt.Printf("Created %s account %s (%s)\n", userRole, user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "login username")
	cmd.Flags().StringVar(&fullName, "nombre", "", "full display name")
	cmd.Flags().StringVar(&role, "rol", string(models.RoleAdmin), "ADMIN or BIBLIOTECARIO")
	return cmd
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
