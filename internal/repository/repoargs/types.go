package repoargs

type RepositoryName string

const (
	OrderRepoName           RepositoryName = "order"
	ProductRepoName         RepositoryName = "product"
	MerchantRepoName        RepositoryName = "merchant"
	PaymentRepoName         RepositoryName = "payment"
	NotificationRepoName    RepositoryName = "notification"
	CourierLocationRepoName RepositoryName = "courier_location"
)
