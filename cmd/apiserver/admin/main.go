package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"go.uber.org/zap"

	"filmtrack/internal/config"
	"filmtrack/internal/migrate"
	"filmtrack/internal/models"
	"filmtrack/internal/storage"
)

const timeLayout = "2006-01-02 15:04:05"

func usage() {
	fmt.Println("使用方法:")
	fmt.Println("  ./admin migrate up|down|status  - 执行 SQL 迁移 (仅 postgres)")
	fmt.Println("  ./admin show-user <userID>      - 显示用户信息")
	fmt.Println("  ./admin list-films <userID>     - 列出用户的片单")
	fmt.Println("  ./admin list-friends <userID>   - 列出用户的好友和待处理请求")
}

func main() {
	// 简单命令行参数解析
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(os.Getenv("FILMTRACK_CONFIG"))
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}

	db, err := storage.InitDB(cfg.Database, zap.NewNop())
	if err != nil {
		log.Fatalf("无法连接数据库: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("无法获取 sql.DB: %v", err)
	}
	defer sqlDB.Close()

	ctx := context.Background()

	// 执行指定的命令
	switch os.Args[1] {
	case "migrate":
		if len(os.Args) < 3 {
			log.Fatalf("需要指定 up、down 或 status")
		}
		var err error
		switch os.Args[2] {
		case "up":
			err = migrate.Up(ctx, sqlDB, cfg.Database.Type)
		case "down":
			err = migrate.Down(ctx, sqlDB, cfg.Database.Type)
		case "status":
			err = migrate.Status(ctx, sqlDB, cfg.Database.Type)
		default:
			log.Fatalf("未知的迁移命令: %s", os.Args[2])
		}
		if err != nil {
			log.Fatalf("迁移失败: %v", err)
		}

	case "show-user":
		showUser(ctx, storage.NewGormUserRepository(db), storage.NewGormFilmRepository(db), userIDArg())

	case "list-films":
		listFilms(ctx, storage.NewGormFilmRepository(db), userIDArg())

	case "list-friends":
		listFriends(ctx, storage.NewGormFriendshipRepository(db), storage.NewGormUserRepository(db), userIDArg())

	default:
		usage()
		log.Fatalf("未知命令: %s", os.Args[1])
	}
}

func userIDArg() uint {
	if len(os.Args) < 3 {
		log.Fatalf("需要指定用户ID")
	}
	id, err := strconv.ParseUint(os.Args[2], 10, 64)
	if err != nil || id == 0 {
		log.Fatalf("无效的用户ID: %s", os.Args[2])
	}
	return uint(id)
}

func showUser(ctx context.Context, repo storage.UserRepository, films storage.FilmRepository, userID uint) {
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		log.Fatalf("查找用户失败: %v", err)
	}

	fmt.Printf("用户 %d 信息:\n", userID)
	fmt.Println("--------------------------------------")
	fmt.Printf("名称: %s\n", user.Name)
	fmt.Printf("邮箱: %s (已验证: %v)\n", user.Email, user.EmailVerified)
	if user.Bio != nil {
		fmt.Printf("简介: %s\n", *user.Bio)
	}
	fmt.Printf("注册时间: %s\n", user.CreatedAt.Format(timeLayout))

	if n, err := films.CountByUser(ctx, userID); err == nil {
		fmt.Printf("片单数量: %d\n", n)
	}
}

func listFilms(ctx context.Context, repo storage.FilmRepository, userID uint) {
	films, err := repo.ListByUser(ctx, userID)
	if err != nil {
		log.Fatalf("获取片单失败: %v", err)
	}

	fmt.Printf("用户 %d 的片单 (%d 部):\n", userID, len(films))
	fmt.Println("--------------------------------------")
	for i, f := range films {
		fmt.Printf("#%d ID: %d, TMDB: %d, %s (%d), 状态: %s, 评分: %d, 添加时间: %s\n",
			i+1, f.ID, f.TmdbID, f.Title, f.Year, f.Status, f.Rating, f.CreatedAt.Format(timeLayout))
	}
}

func listFriends(ctx context.Context, repo storage.FriendshipRepository, users storage.UserRepository, userID uint) {
	accepted, err := repo.ListAccepted(ctx, userID)
	if err != nil {
		log.Fatalf("获取好友失败: %v", err)
	}
	received, err := repo.ListPendingReceived(ctx, userID)
	if err != nil {
		log.Fatalf("获取待处理请求失败: %v", err)
	}
	sent, err := repo.ListPendingSent(ctx, userID)
	if err != nil {
		log.Fatalf("获取已发送请求失败: %v", err)
	}

	var ids []uint
	for _, list := range [][]models.Friendship{accepted, received, sent} {
		for _, f := range list {
			ids = append(ids, f.OtherParty(userID))
		}
	}
	names := map[uint]string{}
	if profiles, err := users.GetProfilesByIDs(ctx, ids); err == nil {
		for _, p := range profiles {
			names[p.ID] = p.Name
		}
	}

	section := func(title string, list []models.Friendship) {
		fmt.Printf("%s (%d):\n", title, len(list))
		for i, f := range list {
			other := f.OtherParty(userID)
			fmt.Printf("  #%d 关系ID: %d, 用户: %d %s, 时间: %s\n",
				i+1, f.ID, other, names[other], f.UpdatedAt.Format(timeLayout))
		}
	}
	fmt.Printf("用户 %d 的好友关系:\n", userID)
	fmt.Println("--------------------------------------")
	section("好友", accepted)
	section("收到的请求", received)
	section("发出的请求", sent)
}
