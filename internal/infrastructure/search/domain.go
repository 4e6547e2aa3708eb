package search

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// UnknownSource 无法解析 URL 时的来源名称
const UnknownSource = "未知来源"

var stripPrefixes = []string{"www.", "m.", "mobile.", "wap."}

// domainNames 常见网站域名到名称的映射
var domainNames = map[string]string{
	// 中文网站
	"zhihu.com":        "知乎",
	"bilibili.com":     "哔哩哔哩",
	"weibo.com":        "微博",
	"toutiao.com":      "今日头条",
	"csdn.net":         "CSDN",
	"jianshu.com":      "简书",
	"juejin.cn":        "掘金",
	"segmentfault.com": "SegmentFault",
	"github.com":       "GitHub",
	"gitee.com":        "Gitee",
	"baidu.com":        "百度",
	"mp.weixin.qq.com": "微信公众号",
	"weixin.qq.com":    "微信",

	// 国际网站
	"google.com":        "Google",
	"youtube.com":       "YouTube",
	"wikipedia.org":     "维基百科",
	"reddit.com":        "Reddit",
	"medium.com":        "Medium",
	"stackoverflow.com": "Stack Overflow",
	"twitter.com":       "X (Twitter)",
	"x.com":             "X (Twitter)",
	"linkedin.com":      "LinkedIn",
	"quora.com":         "Quora",

	// 新闻媒体
	"people.com.cn": "人民网",
	"xinhuanet.com": "新华网",
	"cctv.com":      "央视网",
	"ifeng.com":     "凤凰网",
	"sina.com.cn":   "新浪网",
	"163.com":       "网易",
	"qq.com":        "腾讯网",
	"sohu.com":      "搜狐",
	"thepaper.cn":   "澎湃新闻",

	// 电商平台
	"taobao.com":    "淘宝",
	"tmall.com":     "天猫",
	"jd.com":        "京东",
	"pinduoduo.com": "拼多多",
	"douyin.com":    "抖音",
	"kuaishou.com":  "快手",

	// 技术社区
	"cnblogs.com": "博客园",
	"oschina.net": "OSChina",
	"infoq.cn":    "InfoQ",
	"51cto.com":   "51CTO",

	// 其他
	"douban.com":    "豆瓣",
	"zhihuishu.com": "知乎",
}

// ExtractDomain 提取 URL 的域名：小写，去掉一个常见子域名前缀与端口
// 解析失败或没有主机名时返回 false
func ExtractDomain(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	domain := strings.ToLower(u.Host)
	for _, prefix := range stripPrefixes {
		if strings.HasPrefix(domain, prefix) {
			domain = domain[len(prefix):]
			break
		}
	}
	if host, _, found := strings.Cut(domain, ":"); found {
		domain = host
	}
	if domain == "" {
		return "", false
	}
	return domain, true
}

// WebsiteName 将 URL 解析为网站展示名称
// 未收录的域名返回域名本身（punycode 转为 Unicode），无法解析时返回 UnknownSource
func WebsiteName(rawURL string) string {
	domain, ok := ExtractDomain(rawURL)
	if !ok {
		return UnknownSource
	}
	if name, ok := domainNames[domain]; ok {
		return name
	}
	if strings.Contains(domain, "xn--") {
		if display, err := idna.Display.ToUnicode(domain); err == nil {
			return display
		}
	}
	return domain
}

// FaviconURL 返回网站图标地址，无法解析时返回空串
func FaviconURL(rawURL string) string {
	domain, ok := ExtractDomain(rawURL)
	if !ok {
		return ""
	}
	return "https://www.google.com/s2/favicons?domain=" + url.QueryEscape(domain) + "&sz=32"
}
