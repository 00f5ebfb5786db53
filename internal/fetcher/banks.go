package fetcher

// BankName identifies one of the fixed source-URL partitions a cycle
// scrapes in order.
type BankName string

const (
	BankGeneral               BankName = "general"
	BankAntiCensorship        BankName = "anti_censorship"
	BankRegionPriority        BankName = "region_priority"
	BankMessagingSubscription BankName = "messaging_subscription"
)

// Banks holds the static URL lists partitioned by BankName, in the
// fixed scrape order an orchestrator cycle walks them in.
var Banks = map[BankName][]string{
	BankGeneral: {
		"https://raw.githubusercontent.com/freefq/free/master/v2",
		"https://raw.githubusercontent.com/aiboboxx/v2rayfree/main/v2",
		"https://raw.githubusercontent.com/Pawdroid/Free-servers/main/sub",
		"https://raw.githubusercontent.com/ts-sf/fly/main/v2",
		"https://raw.githubusercontent.com/mahsanet/MahsaFreeConfig/main/app/sub",
	},
	BankAntiCensorship: {
		"https://raw.githubusercontent.com/barry-far/V2ray-config/main/All_Configs_Sub.txt",
		"https://raw.githubusercontent.com/Epodonios/v2ray-configs/main/All_Configs_Sub.txt",
		"https://raw.githubusercontent.com/MhdiTaheri/V2rayCollector/main/sub/mix",
	},
	BankRegionPriority: {
		"https://raw.githubusercontent.com/freefq/free/master/v2ray_region",
		"https://raw.githubusercontent.com/Leon406/SubCrawler/main/sub/share/all",
	},
	BankMessagingSubscription: {
		"https://raw.githubusercontent.com/vpei/free-proxy-share/main/subscribe/sub_merge_base64.txt",
	},
}

// Order is the fixed bank walk order a scrape step follows: general,
// then anti-censorship, then region-priority. Messaging-subscription
// sources are fetched through the channel scraper, not FetchBank.
var Order = []BankName{BankGeneral, BankAntiCensorship, BankRegionPriority}
