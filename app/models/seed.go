package models

import "time"

// DefaultPostsPerPage is the home page size when none is configured.
const DefaultPostsPerPage = 5

// DefaultAbout is shown when the about text is empty.
const DefaultAbout = "这里是关于页面的内容..."

const welcomeContent = `# 欢迎来到我的博客

这是第一篇文章。你可以在**管理后台**中编辑或删除它，然后开始写作。

## 支持的格式

- 标题、**粗体**和*斜体*
- 行内代码，例如 ` + "`fmt.Println`" + `
- 代码块与列表

祝写作愉快！`

// DefaultSettings are the settings of a fresh blog.
func DefaultSettings() SiteSettings {
	return SiteSettings{
		Title:       "我的技术博客",
		Description: "专业技术分享与开发经验",
		Author:      "Your Name",
		Email:       "your.email@example.com",
		About:       DefaultAbout,
	}
}

// DefaultTheme is the theme of a fresh blog.
func DefaultTheme() ThemeConfig {
	return ThemeConfig{
		PrimaryColor: "#3498db",
		AccentColor:  "#e74c3c",
		FontFamily:   "system",
	}
}

// DefaultBlogData returns the seed blog used when nothing has been persisted yet.
func DefaultBlogData(now time.Time) BlogData {
	stamp := now.UTC().Format(UpdatedLayout)
	return BlogData{
		Posts: []Post{
			{
				ID:       "1",
				Title:    "欢迎来到我的博客",
				Slug:     "welcome-to-my-blog",
				Content:  welcomeContent,
				Excerpt:  "这是我的第一篇博客文章，欢迎大家来访！",
				Category: "博客",
				Tags:     []string{"欢迎", "介绍"},
				Date:     now.Format("2006-01-02T15:04"),
				Updated:  stamp,
			},
		},
		Settings:    DefaultSettings(),
		Theme:       DefaultTheme(),
		FriendLinks: []FriendLink{},
	}
}
