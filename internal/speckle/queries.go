package speckle

// GraphQL documents sent to the server's /graphql endpoint.

const activeUserQuery = `query ActiveUser {
  activeUser {
    id
    name
  }
}`

const streamFields = `fragment StreamFields on Stream {
  id
  name
  description
  collaborators {
    id
    name
    role
  }
  branches {
    totalCount
  }
}`

const streamListQuery = `query StreamList($limit: Int!) {
  activeUser {
    streams(limit: $limit) {
      totalCount
      items {
        ...StreamFields
      }
    }
  }
}
` + streamFields

const streamSearchQuery = `query StreamSearch($query: String!, $limit: Int!) {
  streams(query: $query, limit: $limit) {
    totalCount
    items {
      ...StreamFields
    }
  }
}
` + streamFields

const branchListQuery = `query BranchList($streamId: String!, $limit: Int!) {
  stream(id: $streamId) {
    branches(limit: $limit) {
      totalCount
      items {
        id
        name
        description
      }
    }
  }
}`

const commitListQuery = `query CommitList($streamId: String!, $limit: Int!) {
  stream(id: $streamId) {
    commits(limit: $limit) {
      totalCount
      items {
        id
        message
        sourceApplication
        authorName
        branchName
        createdAt
      }
    }
  }
}`
