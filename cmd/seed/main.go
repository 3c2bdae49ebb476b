package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/property-site/backend/internal/config"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/repository"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/seed"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var file string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机楼盘, 3: 插入随机客户, 4: 插入随机交易, 5: 插入随机收藏, 6: 从 CSV 导入楼盘)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.StringVar(&file, "file", "./internal/seed/data/projects.csv", "导入楼盘使用的 CSV 文件")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	if op >= 1 && op <= 5 && n <= 0 {
		slog.Error("请输入合法的记录数量")
		return
	}

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		cnt := 0
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("无法生成随机用户", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(user); err != nil {
				slog.Error("无法插入用户", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入用户成功", slog.Int("count", cnt))
	case 2:
		cnt := 0
		for i := 0; i < n; i++ {
			if err := repo.CreateProject(utils.GenerateRandomProject()); err != nil {
				slog.Error("无法插入楼盘", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入楼盘成功", slog.Int("count", cnt))
	case 3:
		cnt := 0
		for i := 0; i < n; i++ {
			if err := repo.CreateClient(utils.GenerateRandomClient()); err != nil {
				slog.Error("无法插入客户", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入客户成功", slog.Int("count", cnt))
	case 4:
		// 交易必须关联已有的客户和楼盘
		clients, err := repo.GetAllClients()
		if err != nil {
			slog.Error("无法获取客户列表", slog.String("error", err.Error()))
			return
		}
		projects, err := repo.GetProjects(domain.ProjectFilter{})
		if err != nil {
			slog.Error("无法获取楼盘列表", slog.String("error", err.Error()))
			return
		}
		if len(clients) == 0 || len(projects) == 0 {
			slog.Error("请先插入客户和楼盘")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			client := clients[rand.Intn(len(clients))]
			project := projects[rand.Intn(len(projects))]

			if err := repo.CreateOperation(utils.GenerateRandomOperation(client.ID, project.ID)); err != nil {
				slog.Error("无法插入交易", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入交易成功", slog.Int("count", cnt))
	case 5:
		users, err := repo.GetAllUsers()
		if err != nil {
			slog.Error("无法获取用户列表", slog.String("error", err.Error()))
			return
		}
		projects, err := repo.GetProjects(domain.ProjectFilter{})
		if err != nil {
			slog.Error("无法获取楼盘列表", slog.String("error", err.Error()))
			return
		}
		if len(users) == 0 || len(projects) == 0 {
			slog.Error("请先插入用户和楼盘")
			return
		}

		// 重复的收藏会被忽略
		cnt := 0
		for i := 0; i < n; i++ {
			user := users[rand.Intn(len(users))]
			project := projects[rand.Intn(len(projects))]

			if err := repo.AddFavorite(user.ID, project.ID); err != nil {
				slog.Error("无法插入收藏", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入收藏成功", slog.Int("count", cnt))
	case 6:
		f, err := os.Open(file)
		if err != nil {
			slog.Error("打开文件失败", slog.String("file", file), slog.String("error", err.Error()))
			return
		}
		defer f.Close()

		cnt, err := seed.ImportProjects(repo, f)
		if err != nil {
			slog.Error("导入楼盘失败", slog.String("error", err.Error()))
		}
		slog.Info("导入楼盘完成", slog.Int("count", cnt))
	default:
		slog.Error("指定的操作非法")
	}
}
