package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"vitrina/internal/api"
	"vitrina/internal/config"
	"vitrina/internal/pg"
	"vitrina/internal/reference"
)

func main() {
	cfg := config.LoadWithPath("config.json")

	// 1. Справочники опций для Picklist-атрибутов
	catalogs, err := reference.LoadOptionCatalog(cfg.OptionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Папка справочников %s не найдена, едем без них", cfg.OptionsDir)
			catalogs = map[string]reference.OptionDirectory{}
		} else {
			log.Fatalf("Ошибка загрузки справочников: %v", err)
		}
	}
	fmt.Printf("Загружено справочников опций: %d\n", len(catalogs))

	// 2. Хранилище: Postgres при наличии URL, иначе чисто in-memory
	var gw api.Gateway
	if cfg.DBURL != "" {
		db, err := pg.Open(cfg.DBURL)
		if err != nil {
			log.Fatalf("Ошибка подключения к Postgres: %v", err)
		}
		if cfg.AutoMigrate {
			if err := pg.EnsureSchema(db); err != nil {
				log.Fatalf("Ошибка миграции схемы: %v", err)
			}
		}
		gw = pg.NewStore(db)
	}

	reg := api.NewRegistry(gw)
	ctx := context.Background()
	if err := reg.Load(ctx); err != nil {
		log.Fatalf("Ошибка загрузки данных из хранилища: %v", err)
	}

	// 3. Демо-данные на пустом реестре
	if cfg.Seed {
		if err := api.Seed(ctx, reg, catalogs); err != nil {
			log.Fatalf("Ошибка сидирования: %v", err)
		}
	}

	fmt.Printf("Загружено шаблонов: %d, продуктов: %d\n", len(reg.Templates()), len(reg.Products()))
	fmt.Printf("Стартуем сервер Vitrina на :%s...\n", cfg.Port)
	api.RunServer(":"+cfg.Port, reg, catalogs)
}
