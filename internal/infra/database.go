package infra

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and applies the
// idempotent schema bootstrap. Table and column names follow the camelCase
// schema of the hosted store so both backends read the same rows.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return db, nil
}

// RunMigrations creates every table if missing. Safe to re-run.
func RunMigrations(db *gorm.DB) error {
	stmts := []struct{ descr, sql string }{
		{"Usuario", `CREATE TABLE IF NOT EXISTS "Usuario" (
			"id"       TEXT PRIMARY KEY,
			"nome"     TEXT NOT NULL,
			"email"    TEXT NOT NULL UNIQUE,
			"senha"    TEXT NOT NULL,
			"criadoEm" TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
		{"Produto", `CREATE TABLE IF NOT EXISTS "Produto" (
			"id"                BIGSERIAL PRIMARY KEY,
			"nome"              TEXT NOT NULL,
			"marca"             TEXT,
			"tipo"              TEXT,
			"tamanho"           TEXT,
			"preco"             NUMERIC(12,2) NOT NULL,
			"quantidadeEstoque" INTEGER NOT NULL DEFAULT 0 CHECK ("quantidadeEstoque" >= 0),
			"criadoEm"          TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
		{"Venda", `CREATE TABLE IF NOT EXISTS "Venda" (
			"id"             BIGSERIAL PRIMARY KEY,
			"total"          NUMERIC(12,2) NOT NULL,
			"formaPagamento" TEXT,
			"dataVenda"      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
		{"ItemVenda", `CREATE TABLE IF NOT EXISTS "ItemVenda" (
			"id"            BIGSERIAL PRIMARY KEY,
			"vendaId"       BIGINT NOT NULL REFERENCES "Venda"("id"),
			"produtoId"     BIGINT NOT NULL,
			"quantidade"    INTEGER NOT NULL CHECK ("quantidade" > 0),
			"precoUnitario" NUMERIC(12,2) NOT NULL CHECK ("precoUnitario" >= 0)
		)`},
		{"MovimentacaoCaixa", `CREATE TABLE IF NOT EXISTS "MovimentacaoCaixa" (
			"id"        BIGSERIAL PRIMARY KEY,
			"tipo"      TEXT NOT NULL,
			"valor"     NUMERIC(12,2) NOT NULL CHECK ("valor" >= 0),
			"descricao" TEXT NOT NULL,
			"categoria" TEXT,
			"data"      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`},
		{"idx ItemVenda.vendaId", `CREATE INDEX IF NOT EXISTS idx_itemvenda_venda ON "ItemVenda" ("vendaId")`},
		{"idx MovimentacaoCaixa.data", `CREATE INDEX IF NOT EXISTS idx_movcaixa_data ON "MovimentacaoCaixa" ("data" DESC)`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %q: %w", s.descr, err)
		}
	}
	return nil
}
