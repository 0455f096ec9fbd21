package monarch

const getAccountsQuery = `query GetAccounts {
  accounts {
    ...AccountFields
    __typename
  }
  householdPreferences {
    id
    accountGroupOrder
    __typename
  }
}

fragment AccountFields on Account {
  id
  displayName
  syncDisabled
  deactivatedAt
  isHidden
  isAsset
  mask
  createdAt
  updatedAt
  displayLastUpdatedAt
  currentBalance
  displayBalance
  includeInNetWorth
  hideFromList
  hideTransactionsFromReports
  includeBalanceInNetWorth
  includeInGoalBalance
  dataProvider
  dataProviderAccountId
  isManual
  transactionsCount
  holdingsCount
  manualInvestmentsTrackingMethod
  order
  logoUrl
  type {
    name
    display
    __typename
  }
  subtype {
    name
    display
    __typename
  }
  __typename
}`

const getTransactionsQuery = `query GetTransactionsList($offset: Int, $limit: Int, $filters: TransactionFilterInput, $orderBy: TransactionOrdering) {
  allTransactions(filters: $filters) {
    totalCount
    results(offset: $offset, limit: $limit, orderBy: $orderBy) {
      id
      amount
      pending
      date
      hideFromReports
      plaidName
      notes
      isRecurring
      reviewStatus
      needsReview
      isSplitTransaction
      createdAt
      updatedAt
      category {
        id
        name
        __typename
      }
      merchant {
        name
        id
        transactionsCount
        __typename
      }
      account {
        id
        displayName
        __typename
      }
      tags {
        id
        name
        color
        order
        __typename
      }
      __typename
    }
    __typename
  }
}`

const getCategoriesQuery = `query GetCategories {
  categories {
    id
    order
    name
    systemCategory
    isSystemCategory
    isDisabled
    updatedAt
    createdAt
    group {
      id
      name
      type
      __typename
    }
    __typename
  }
}`

const getHoldingsQuery = `query Web_GetHoldings($input: PortfolioInput) {
  portfolio(input: $input) {
    aggregateHoldings {
      edges {
        node {
          id
          quantity
          basis
          totalValue
          securityPriceChangeDollars
          securityPriceChangePercent
          lastSyncedAt
          holdings {
            id
            type
            typeDisplay
            name
            ticker
            closingPrice
            isManual
            closingPriceUpdatedAt
            __typename
          }
          security {
            id
            name
            type
            ticker
            typeDisplay
            currentPrice
            currentPriceUpdatedAt
            closingPrice
            oneDayChangePercent
            oneDayChangeDollars
            __typename
          }
          __typename
        }
        __typename
      }
      __typename
    }
    __typename
  }
}`
